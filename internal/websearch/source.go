package websearch

import (
	"context"
	"fmt"
)

// State is the pagination state of a Source.
type State int

const (
	Ready State = iota
	Fetching
	Exhausted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Fetching:
		return "fetching"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// SearchError reports a failure of the search provider. It ends the run.
type SearchError struct {
	Provider string
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Source walks the result pages of one query. It is lazy, finite and
// cannot be rewound; build a new Source to start over.
//
//	src := websearch.NewSource(provider, query, 50, 1000)
//	for src.Next(ctx) {
//		for _, res := range src.Page() { ... }
//	}
//	if err := src.Err(); err != nil { ... }
type Source struct {
	provider   Provider
	query      string
	pageSize   int
	maxResults int

	state State
	count int
	index int
	page  Page
	err   error
}

// NewSource creates a page source. pageSize and maxResults must be positive.
func NewSource(provider Provider, query string, pageSize, maxResults int) *Source {
	return &Source{
		provider:   provider,
		query:      query,
		pageSize:   pageSize,
		maxResults: maxResults,
		state:      Ready,
	}
}

// Next fetches the next page. It returns false once the sequence has
// ended, either normally or with an error reported by Err.
//
// The maximum is checked before each fetch, so the last page may take the
// total past maxResults.
func (s *Source) Next(ctx context.Context) bool {
	s.page = nil
	if s.state == Exhausted || s.count >= s.maxResults {
		s.state = Exhausted
		return false
	}

	s.state = Fetching
	page, err := s.provider.FetchNextPage(ctx, s.query, s.pageSize)
	if err != nil {
		s.state = Exhausted
		// Client timeouts also match context.DeadlineExceeded; only the
		// caller's own context makes this a cancellation.
		if ctx.Err() != nil {
			s.err = ctx.Err()
		} else {
			s.err = &SearchError{Provider: s.provider.Name(), Err: err}
		}
		return false
	}
	if len(page) == 0 {
		s.state = Exhausted
		return false
	}

	if len(page) < s.pageSize {
		s.state = Exhausted
	} else {
		s.state = Ready
	}
	s.count += len(page)
	s.index++
	s.page = page
	return true
}

// Page returns the page fetched by the last successful call to Next.
func (s *Source) Page() Page {
	return s.page
}

// Err returns the error that ended the sequence, if any.
func (s *Source) Err() error {
	return s.err
}

func (s *Source) State() State {
	return s.state
}

// Count is the number of results yielded so far.
func (s *Source) Count() int {
	return s.count
}

// Index is the 1-based number of the current page.
func (s *Source) Index() int {
	return s.index
}

func (s *Source) PageSize() int {
	return s.pageSize
}

func (s *Source) Query() string {
	return s.query
}
