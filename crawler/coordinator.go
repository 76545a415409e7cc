package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/striking-distance/backend/logging"
)

// DefaultWorkers is the crawl pool size used when none is configured.
const DefaultWorkers = 5

// Coordinator fans a batch of URLs out over a bounded worker pool and
// collects one PageContent per URL, failures included.
type Coordinator struct {
	fetcher Fetcher
	workers int
	log     *logging.Logger
}

// NewCoordinator creates a Coordinator. A non-positive worker count selects
// DefaultWorkers.
func NewCoordinator(fetcher Fetcher, workers int, log *logging.Logger) *Coordinator {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Coordinator{fetcher: fetcher, workers: workers, log: log}
}

// Crawl fetches every URL and blocks until the whole batch has completed.
// The returned map holds exactly one entry per input URL regardless of
// completion order. A failed or panicking fetch degrades to a failure entry;
// it never aborts the batch.
func (c *Coordinator) Crawl(ctx context.Context, urls []string) map[string]PageContent {
	results := make(map[string]PageContent, len(urls))
	if len(urls) == 0 {
		return results
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan string)
	)

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				page := c.fetchSafe(ctx, url)
				mu.Lock()
				results[url] = page
				mu.Unlock()
			}
		}()
	}

	for _, url := range urls {
		jobs <- url
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, page := range results {
		if page.Failed() {
			failed++
		}
	}
	c.log.WithFields(map[string]interface{}{
		"urls":   len(urls),
		"failed": failed,
	}).Info("crawl batch complete")

	return results
}

// fetchSafe converts a panicking fetcher into a failure result so one bad
// page cannot take the batch down.
func (c *Coordinator) fetchSafe(ctx context.Context, url string) (page PageContent) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("url", url).Error(fmt.Sprintf("fetch panic: %v", r))
			page = PageContent{URL: url, Err: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return c.fetcher.Fetch(ctx, url)
}
