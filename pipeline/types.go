package pipeline

import "github.com/striking-distance/backend/crawler"

// KeywordRecord is one search-performance row: a keyword ranking for a URL
// at a given position. Duplicate (url, keyword) pairs are allowed and treated
// independently; only URLs are deduplicated, and only for crawling.
type KeywordRecord struct {
	URL         string  `json:"url"`
	Keyword     string  `json:"keyword"`
	Position    int     `json:"position"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	CTR         float64 `json:"ctr"`
}

// MatchedRecord extends a KeywordRecord with the three on-page presence
// signals computed against the crawled content.
type MatchedRecord struct {
	KeywordRecord
	InTitle   bool   `json:"inTitle"`
	InH1      bool   `json:"inH1"`
	InContent bool   `json:"inContent"`
	PageTitle string `json:"pageTitle"`
	// OptimizationScore counts how many presence signals are true (0..3).
	OptimizationScore int `json:"optimizationScore"`
}

// ScoredRecord extends a MatchedRecord with its opportunity score and the
// recommendations that produced it.
type ScoredRecord struct {
	MatchedRecord
	OpportunityScore int      `json:"opportunityScore"`
	Recommendations  []string `json:"recommendations"`
}

// NotFoundRecord identifies a keyword whose URL could not be crawled.
// No matching or scoring is attempted for these.
type NotFoundRecord struct {
	URL      string `json:"url"`
	Keyword  string `json:"keyword"`
	Position int    `json:"position"`
}

// Result carries the four output datasets of one pipeline run. Every record
// that survives filtering lands in exactly one of StrikingDistance,
// FullyOptimized or URLsNotFound.
type Result struct {
	StrikingDistance []ScoredRecord    `json:"strikingDistance"`
	FullyOptimized   []MatchedRecord   `json:"fullyOptimized"`
	BlocklistRemoved []KeywordRecord   `json:"blocklistRemoved"`
	URLsNotFound     []NotFoundRecord  `json:"urlsNotFound"`
	CrawlErrors      map[string]string `json:"crawlErrors,omitempty"`
}

// Options configures one pipeline run.
type Options struct {
	// PositionMin and PositionMax bound the striking-distance band.
	PositionMin int `json:"positionMin"`
	PositionMax int `json:"positionMax"`
	// MinImpressions drops low-volume keywords. Only applied when the input
	// actually carried impressions data.
	MinImpressions int  `json:"minImpressions"`
	HasImpressions bool `json:"hasImpressions"`
	// Blocklist terms exclude keywords containing them, case-insensitively.
	Blocklist []string `json:"blocklist"`
	// MaxURLs caps how many unique URLs are crawled, in first-appearance order.
	MaxURLs int `json:"maxUrls"`
	Workers int `json:"workers"`
	// LiveCrawl selects real HTTP fetching; when false, deterministic sample
	// content is used instead.
	LiveCrawl bool `json:"liveCrawl"`
}

// DefaultOptions returns the tool's defaults: positions 3-20, at least 10
// impressions, 50 URLs, 5 workers, live crawling.
func DefaultOptions() Options {
	return Options{
		PositionMin:    3,
		PositionMax:    20,
		MinImpressions: 10,
		HasImpressions: true,
		MaxURLs:        50,
		Workers:        crawler.DefaultWorkers,
		LiveCrawl:      true,
	}
}
