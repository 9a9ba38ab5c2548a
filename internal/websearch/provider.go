package websearch

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result is a single search result entry.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Page is the ordered batch of results returned by one provider call.
type Page []Result

// Provider fetches result pages for a query.
//
// Providers are stateful: each call to FetchNextPage with the same query
// continues where the previous one stopped. Passing a different query
// starts over from the first result.
type Provider interface {
	Name() string
	FetchNextPage(ctx context.Context, query string, pageSize int) (Page, error)
}

// Options configures a provider built by NewProvider.
type Options struct {
	BaseURL   string
	UserAgent string
	APIKey    string
	Timeout   time.Duration
}

// NewProvider returns the provider registered under name.
func NewProvider(name string, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "searxng":
		return NewSearXNGProvider(opts.BaseURL, opts.UserAgent, opts.APIKey, opts.Timeout), nil
	case "duckduckgo", "ddg", "":
		return NewDuckDuckGoProvider(opts.BaseURL, opts.UserAgent, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", name)
	}
}
