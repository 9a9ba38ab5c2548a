package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// DuckDuckGoProvider scrapes the JavaScript-free DuckDuckGo results page,
// which honours the filetype: and site: operators.
type DuckDuckGoProvider struct {
	baseURL   string
	userAgent string
	client    *http.Client
	buf       *resultBuffer
}

func NewDuckDuckGoProvider(baseURL, userAgent string, timeout time.Duration) *DuckDuckGoProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://html.duckduckgo.com"
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	p := &DuckDuckGoProvider{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
	p.buf = newResultBuffer(p.fetchPage)
	return p
}

func (p *DuckDuckGoProvider) Name() string {
	return "duckduckgo"
}

func (p *DuckDuckGoProvider) FetchNextPage(ctx context.Context, query string, pageSize int) (Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	return p.buf.next(ctx, query, pageSize)
}

func (p *DuckDuckGoProvider) fetchPage(ctx context.Context, query string, _, offset int) ([]Result, error) {
	endpoint, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/html/"

	params := url.Values{}
	params.Set("q", query)
	if offset > 0 {
		params.Set("s", strconv.Itoa(offset))
		params.Set("dc", strconv.Itoa(offset+1))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}
	return p.parseResults(doc), nil
}

func (p *DuckDuckGoProvider) parseResults(doc *goquery.Document) []Result {
	var results []Result
	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := unwrapRedirect(href)
		if target == "" {
			return
		}
		results = append(results, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").Text()), " "),
			Source:  p.Name(),
		})
	})
	return results
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect links to the
// destination URL. Non-HTTP links yield "".
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if dest := u.Query().Get("uddg"); dest != "" {
			return unwrapRedirect(dest)
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
