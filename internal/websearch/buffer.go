package websearch

import (
	"context"
	"fmt"
)

// upstreamFunc fetches one upstream page. page is 1-based, offset is the
// number of results the upstream has already returned for this query.
type upstreamFunc func(ctx context.Context, query string, page, offset int) ([]Result, error)

// resultBuffer adapts an upstream with its own page size to callers that
// ask for pages of arbitrary size. Duplicate URLs are dropped; an upstream
// page that contributes nothing new ends the stream.
type resultBuffer struct {
	fetch   upstreamFunc
	query   string
	page    int
	offset  int
	pending []Result
	seen    map[string]bool
	done    bool
}

func newResultBuffer(fetch upstreamFunc) *resultBuffer {
	return &resultBuffer{fetch: fetch}
}

func (b *resultBuffer) reset(query string) {
	b.query = query
	b.page = 1
	b.offset = 0
	b.pending = nil
	b.seen = make(map[string]bool)
	b.done = false
}

func (b *resultBuffer) next(ctx context.Context, query string, size int) (Page, error) {
	if size <= 0 {
		return nil, fmt.Errorf("page size must be greater than 0")
	}
	if b.seen == nil || query != b.query {
		b.reset(query)
	}

	for len(b.pending) < size && !b.done {
		results, err := b.fetch(ctx, query, b.page, b.offset)
		if err != nil {
			return nil, err
		}
		b.page++
		b.offset += len(results)

		added := 0
		for _, res := range results {
			if res.URL == "" || b.seen[res.URL] {
				continue
			}
			b.seen[res.URL] = true
			b.pending = append(b.pending, res)
			added++
		}
		if added == 0 {
			b.done = true
		}
	}

	n := size
	if len(b.pending) < n {
		n = len(b.pending)
	}
	page := make(Page, n)
	copy(page, b.pending[:n])
	b.pending = b.pending[n:]
	return page, nil
}
