package crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/striking-distance/backend/logging"
)

// fakeFetcher lets tests script per-URL outcomes.
type fakeFetcher struct {
	calls  atomic.Int64
	fetch  func(url string) PageContent
	active atomic.Int64
	peak   atomic.Int64
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) PageContent {
	f.calls.Add(1)
	n := f.active.Add(1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	defer f.active.Add(-1)

	if f.fetch != nil {
		return f.fetch(url)
	}
	return PageContent{URL: url, Title: "t", H1: "h", Content: "c"}
}

func urlBatch(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page%d", i)
	}
	return urls
}

func TestCrawlCompleteMapForAnyPoolSize(t *testing.T) {
	const n = 20
	urls := urlBatch(n)

	for workers := 1; workers <= 7; workers++ {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			fetcher := &fakeFetcher{}
			c := NewCoordinator(fetcher, workers, logging.Nop())

			results := c.Crawl(context.Background(), urls)

			if len(results) != n {
				t.Fatalf("got %d entries, want %d", len(results), n)
			}
			for _, url := range urls {
				page, ok := results[url]
				if !ok {
					t.Fatalf("missing entry for %s", url)
				}
				if page.URL != url {
					t.Fatalf("entry for %s carries url %s", url, page.URL)
				}
			}
			if got := fetcher.calls.Load(); got != n {
				t.Fatalf("fetch called %d times, want %d", got, n)
			}
		})
	}
}

func TestCrawlBoundsConcurrency(t *testing.T) {
	const workers = 3
	fetcher := &fakeFetcher{}
	c := NewCoordinator(fetcher, workers, logging.Nop())

	c.Crawl(context.Background(), urlBatch(30))

	if peak := fetcher.peak.Load(); peak > workers {
		t.Fatalf("observed %d concurrent fetches, pool size is %d", peak, workers)
	}
}

func TestCrawlPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		fetch: func(url string) PageContent {
			if url == "https://example.com/page3" {
				return PageContent{URL: url, Err: "http status 500"}
			}
			return PageContent{URL: url, Title: "ok"}
		},
	}
	c := NewCoordinator(fetcher, 4, logging.Nop())

	results := c.Crawl(context.Background(), urlBatch(10))

	if len(results) != 10 {
		t.Fatalf("got %d entries, want 10", len(results))
	}
	failed := 0
	for _, page := range results {
		if page.Failed() {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("got %d failures, want 1", failed)
	}
}

func TestCrawlPanicBecomesFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		fetch: func(url string) PageContent {
			if url == "https://example.com/page0" {
				panic("fetcher exploded")
			}
			return PageContent{URL: url, Title: "ok"}
		},
	}
	c := NewCoordinator(fetcher, 2, logging.Nop())

	results := c.Crawl(context.Background(), urlBatch(4))

	if len(results) != 4 {
		t.Fatalf("got %d entries, want 4", len(results))
	}
	page := results["https://example.com/page0"]
	if !page.Failed() {
		t.Fatal("panicking fetch should produce a failure entry")
	}
}

func TestCrawlEmptyBatch(t *testing.T) {
	c := NewCoordinator(&fakeFetcher{}, 5, logging.Nop())
	results := c.Crawl(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(results))
	}
}

func TestNewCoordinatorDefaultsWorkers(t *testing.T) {
	c := NewCoordinator(&fakeFetcher{}, 0, nil)
	if c.workers != DefaultWorkers {
		t.Fatalf("workers = %d, want %d", c.workers, DefaultWorkers)
	}
}
