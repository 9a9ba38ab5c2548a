package download

import (
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
)

// ClientOptions configures the HTTP client shared by the resolver probe
// and the downloader.
type ClientOptions struct {
	// Timeout bounds connecting, the TLS handshake, waiting for response
	// headers and each gap between body reads. Zero disables it.
	Timeout time.Duration
	Proxy   string
}

// NewHTTPClient builds a client without a whole-request deadline so large
// files are not cut off; stalls are caught by the per-phase timeouts.
func NewHTTPClient(opts ClientOptions) *http.Client {
	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   2,
	}

	if opts.Proxy != "" {
		if proxyURL, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{Transport: transport}
}

// idleReader cancels the request when no bytes arrive for timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	fired   atomic.Bool
	stop    sync.Once
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel func()) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	if timeout > 0 {
		ir.timer = time.AfterFunc(timeout, func() {
			ir.fired.Store(true)
			cancel()
		})
	}
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && ir.timer != nil && !ir.fired.Load() {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

func (ir *idleReader) timedOut() bool {
	return ir.fired.Load()
}

func (ir *idleReader) Close() {
	ir.stop.Do(func() {
		if ir.timer != nil {
			ir.timer.Stop()
		}
	})
}
