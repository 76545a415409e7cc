package crawler

import (
	"context"
	"fmt"
	"strings"
)

// SampleFetcher produces deterministic page content without touching the
// network. It backs the offline report mode, where the downstream pipeline
// runs exactly as in a live crawl.
type SampleFetcher struct{}

func (SampleFetcher) Fetch(_ context.Context, url string) PageContent {
	slug := url
	if i := strings.LastIndex(url, "/"); i >= 0 {
		slug = url[i+1:]
	}
	return PageContent{
		URL:     url,
		Title:   "Sample Title for " + slug,
		H1:      "Sample H1 Header for " + slug,
		Content: fmt.Sprintf("This is sample content for %s. It contains various keywords and text.", url),
	}
}
