package download

import (
	"errors"
	"fmt"
)

// Kind classifies a recoverable transport failure.
type Kind int

const (
	KindConnection Kind = iota
	KindTimeout
	KindStatus
	KindShortRead
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindShortRead:
		return "short_read"
	default:
		return "unknown"
	}
}

// TransportError is a per-file network or protocol failure. The caller
// logs it and moves on to the next item.
type TransportError struct {
	Kind       Kind
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%d, reason: %s", e.StatusCode, e.Reason)
	case KindShortRead:
		return "the downloaded data is less than the expected amount"
	case KindTimeout:
		return fmt.Sprintf("reading socket timed out: %v", e.Err)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FilesystemError is a failure to write the local copy. It aborts the run.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must end the run.
func IsFatal(err error) bool {
	var fsErr *FilesystemError
	return errors.As(err, &fsErr)
}

// IsTransport reports whether err is a recoverable transport failure.
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
