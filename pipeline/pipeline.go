package pipeline

import (
	"context"
	"fmt"

	"github.com/striking-distance/backend/crawler"
	"github.com/striking-distance/backend/logging"
	"github.com/striking-distance/backend/stats"
)

// Pipeline sequences filtering, crawling, matching, scoring and
// categorization for one report run. It holds no per-run state; Run may be
// called concurrently.
type Pipeline struct {
	live   crawler.Fetcher
	sample crawler.Fetcher
	log    *logging.Logger
	stats  *stats.Storage
}

// New creates a Pipeline. The live fetcher is used when Options.LiveCrawl is
// set; otherwise deterministic sample content is generated. stats may be nil.
func New(live crawler.Fetcher, log *logging.Logger, st *stats.Storage) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{
		live:   live,
		sample: crawler.SampleFetcher{},
		log:    log,
		stats:  st,
	}
}

// Run executes the full pipeline over records and returns the four output
// datasets. Per-URL fetch failures never fail the run; they surface in
// URLsNotFound and CrawlErrors.
func (p *Pipeline) Run(ctx context.Context, records []KeywordRecord, opts Options) (*Result, error) {
	if opts.PositionMin > opts.PositionMax {
		return nil, fmt.Errorf("invalid position range [%d, %d]", opts.PositionMin, opts.PositionMax)
	}

	filtered, blocked := Filter(records, opts)
	urls := UniqueURLs(filtered, opts.MaxURLs)

	fetcher := p.sample
	if opts.LiveCrawl {
		fetcher = p.live
	}
	coordinator := crawler.NewCoordinator(fetcher, opts.Workers, p.log)
	pages := coordinator.Crawl(ctx, urls)

	striking, optimized, notFound := Categorize(filtered, pages)

	crawlErrors := make(map[string]string)
	for url, page := range pages {
		if page.Failed() {
			crawlErrors[url] = page.Err
		}
	}

	result := &Result{
		StrikingDistance: striking,
		FullyOptimized:   optimized,
		BlocklistRemoved: blocked,
		URLsNotFound:     notFound,
		CrawlErrors:      crawlErrors,
	}

	if p.stats != nil {
		p.stats.IncrementStats(1, len(pages), len(crawlErrors), len(filtered))
	}

	p.log.WithFields(map[string]interface{}{
		"input":            len(records),
		"filtered":         len(filtered),
		"blocked":          len(blocked),
		"crawled":          len(pages),
		"crawlFailures":    len(crawlErrors),
		"strikingDistance": len(striking),
		"fullyOptimized":   len(optimized),
		"notFound":         len(notFound),
	}).Info("report generated")

	return result, nil
}
