package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 10 * time.Second

	// maxContentLength caps extracted body text, in characters.
	maxContentLength = 5000

	userAgent = "StrikingDistanceBot/1.0 (+https://github.com/striking-distance)"
)

// PageContent holds the on-page elements keyword presence is checked against.
// Err is empty on success; on failure it carries a human-readable reason and
// the text fields are empty.
type PageContent struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	H1      string `json:"h1"`
	Content string `json:"content"`
	Err     string `json:"error,omitempty"`
}

// Failed reports whether the fetch for this page did not succeed.
func (p PageContent) Failed() bool { return p.Err != "" }

// Fetcher retrieves the content of a single page. Implementations never
// return an error: failures are reported inside the PageContent.
type Fetcher interface {
	Fetch(ctx context.Context, url string) PageContent
}

// HTTPFetcher fetches pages over the network with a bounded timeout.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A non-positive timeout selects
// DefaultTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Fetch performs one GET and extracts title, h1 text and visible body text.
// Any transport error, timeout or non-2xx status becomes a failure result.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) PageContent {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PageContent{URL: url, Err: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return PageContent{URL: url, Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PageContent{URL: url, Err: fmt.Sprintf("http status %d", resp.StatusCode)}
	}

	// Decode to UTF-8 before parsing so keyword matching works on non-UTF-8 pages.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return PageContent{URL: url, Err: err.Error()}
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return PageContent{URL: url, Err: err.Error()}
	}

	return extract(url, doc)
}

func extract(url string, doc *goquery.Document) PageContent {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	var h1s []string
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			h1s = append(h1s, t)
		}
	})

	doc.Find("script,noscript,style").Remove()

	content := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	content = truncate(content, maxContentLength)

	return PageContent{
		URL:     url,
		Title:   title,
		H1:      strings.Join(h1s, " "),
		Content: content,
	}
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
