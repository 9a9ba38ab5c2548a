package download

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var trailingExtension = regexp.MustCompile(`\.(\w+)$`)

// ContentTyper looks up the media type a URL serves.
type ContentTyper interface {
	ContentType(ctx context.Context, rawURL string) (string, error)
}

// HeadProber answers ContentType with a HEAD request.
type HeadProber struct {
	client    *http.Client
	userAgent string
}

func NewHeadProber(client *http.Client, userAgent string) *HeadProber {
	return &HeadProber{client: client, userAgent: userAgent}
}

func (p *HeadProber) ContentType(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("head request failed: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("head request failed with status %d", resp.StatusCode)
	}
	return resp.Header.Get("Content-Type"), nil
}

// Resolver derives local file paths from result URLs.
type Resolver struct {
	prober ContentTyper
}

func NewResolver(prober ContentTyper) *Resolver {
	return &Resolver{prober: prober}
}

// Resolve returns the local path for rawURL under destRoot. With keepDirs
// the URL's path hierarchy is kept, otherwise only its last segment.
//
// URLs whose path ends in an extension are resolved offline. Others are
// probed for their media type and get the matching extension appended,
// or DefaultExtension when that fails. A URL without a path is named
// after its host.
func (r *Resolver) Resolve(ctx context.Context, rawURL, destRoot string, keepDirs bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	p := strings.Trim(u.Path, "/")
	pseudoPath := ""
	if p == "" {
		pseudoPath = u.Hostname()
		if pseudoPath == "" {
			return "", fmt.Errorf("url %q has neither path nor host", rawURL)
		}
	}

	if pseudoPath != "" || !trailingExtension.MatchString(p) {
		p += pseudoPath + r.probeExtension(ctx, rawURL)
	}

	// Drop dot segments so the result stays under destRoot.
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if !keepDirs {
		p = path.Base(p)
	}

	return withTrailingSeparator(destRoot) + filepath.FromSlash(p), nil
}

func (r *Resolver) probeExtension(ctx context.Context, rawURL string) string {
	if r.prober == nil {
		return DefaultExtension
	}
	contentType, err := r.prober.ContentType(ctx, rawURL)
	if err != nil {
		return DefaultExtension
	}
	if ext := ExtensionForType(contentType); ext != "" {
		return ext
	}
	return DefaultExtension
}

func withTrailingSeparator(dir string) string {
	if dir == "" {
		dir = "."
	}
	if strings.HasSuffix(dir, string(os.PathSeparator)) || strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + string(os.PathSeparator)
}
