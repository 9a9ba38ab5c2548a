package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// Downloader fetches one URL to one local file per call. Each call makes a
// single attempt.
type Downloader struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewDownloader creates a downloader. timeout is the idle read timeout
// applied to response bodies; zero disables it.
func NewDownloader(client *http.Client, userAgent string, timeout time.Duration) *Downloader {
	if client == nil {
		client = NewHTTPClient(ClientOptions{Timeout: timeout})
	}
	return &Downloader{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Download writes the body of rawURL to path and returns the number of
// bytes written.
//
// Network and protocol failures come back as *TransportError. Failures to
// create or write path come back as *FilesystemError. If ctx is cancelled
// the context error is returned as is. The file is only created once a
// 2xx response has arrived; a failed transfer may leave a partial file.
func (d *Downloader) Download(ctx context.Context, rawURL, path string) (int64, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &TransportError{Kind: KindConnection, URL: rawURL, Err: err}
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &TransportError{Kind: classify(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &TransportError{
			Kind:       KindStatus,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, &FilesystemError{Op: "create", Path: path, Err: err}
	}

	body := newIdleReader(resp.Body, d.timeout, cancel)
	defer body.Close()

	w := &trackingWriter{w: f}
	n, copyErr := io.Copy(w, body)
	closeErr := f.Close()

	if w.err != nil {
		return n, &FilesystemError{Op: "write", Path: path, Err: w.err}
	}
	if copyErr != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		if body.timedOut() {
			return n, &TransportError{Kind: KindTimeout, URL: rawURL, Err: copyErr}
		}
		if errors.Is(copyErr, io.ErrUnexpectedEOF) {
			return n, &TransportError{Kind: KindShortRead, URL: rawURL, Err: copyErr}
		}
		return n, &TransportError{Kind: classify(copyErr), URL: rawURL, Err: copyErr}
	}
	if closeErr != nil {
		return n, &FilesystemError{Op: "close", Path: path, Err: closeErr}
	}
	if resp.ContentLength >= 0 && n < resp.ContentLength {
		return n, &TransportError{
			Kind: KindShortRead,
			URL:  rawURL,
			Err:  fmt.Errorf("got %d of %d bytes", n, resp.ContentLength),
		}
	}

	return n, nil
}

func classify(err error) Kind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

// trackingWriter remembers write errors so they can be told apart from
// read errors after io.Copy.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
