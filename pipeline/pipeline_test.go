package pipeline_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/striking-distance/backend/crawler"
	"github.com/striking-distance/backend/ingest"
	"github.com/striking-distance/backend/logging"
	"github.com/striking-distance/backend/pipeline"
)

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/shoes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Footwear Guide</title></head>
<body><h1>Our Picks</h1><p>The best running shoes for marathon season.</p></body></html>`))
	})
	mux.HandleFunc("/optimized", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Trail Guide 2024</title></head>
<body><h1>Trail Guide</h1><p>This trail guide covers everything.</p></body></html>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestPipelineRun(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	records := []pipeline.KeywordRecord{
		{URL: ts.URL + "/shoes", Keyword: "running shoes", Position: 4, Impressions: 1200},
		{URL: ts.URL + "/optimized", Keyword: "trail guide", Position: 6, Impressions: 500},
		{URL: ts.URL + "/broken", Keyword: "any keyword", Position: 9, Impressions: 500},
		{URL: ts.URL + "/shoes", Keyword: "shoes near me", Position: 5, Impressions: 500},
		{URL: ts.URL + "/shoes", Keyword: "out of range", Position: 25, Impressions: 500},
	}
	opts := pipeline.Options{
		PositionMin:    3,
		PositionMax:    20,
		MinImpressions: 10,
		HasImpressions: true,
		Blocklist:      []string{"near me"},
		MaxURLs:        50,
		Workers:        3,
		LiveCrawl:      true,
	}

	p := pipeline.New(crawler.NewHTTPFetcher(5*time.Second), logging.Nop(), nil)
	result, err := p.Run(context.Background(), records, opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.BlocklistRemoved) != 1 || result.BlocklistRemoved[0].Keyword != "shoes near me" {
		t.Fatalf("unexpected blocklist bucket: %#v", result.BlocklistRemoved)
	}

	if len(result.StrikingDistance) != 1 {
		t.Fatalf("expected 1 striking record, got %#v", result.StrikingDistance)
	}
	sd := result.StrikingDistance[0]
	if sd.Keyword != "running shoes" {
		t.Fatalf("unexpected striking keyword %q", sd.Keyword)
	}
	// 30 (position 4) + 15 (title) + 10 (h1) + 10 (>1000 impressions) = 65.
	if sd.OpportunityScore != 65 {
		t.Fatalf("opportunity score = %d, want 65", sd.OpportunityScore)
	}
	if !sd.InContent || sd.InTitle || sd.InH1 {
		t.Fatalf("unexpected signals: %+v", sd)
	}

	if len(result.FullyOptimized) != 1 || result.FullyOptimized[0].Keyword != "trail guide" {
		t.Fatalf("unexpected fully-optimized bucket: %#v", result.FullyOptimized)
	}

	if len(result.URLsNotFound) != 1 || result.URLsNotFound[0].Keyword != "any keyword" {
		t.Fatalf("unexpected not-found bucket: %#v", result.URLsNotFound)
	}
	if reason, ok := result.CrawlErrors[ts.URL+"/broken"]; !ok || reason == "" {
		t.Fatalf("expected crawl error for /broken, got %#v", result.CrawlErrors)
	}

	// Position 25 was filtered before crawling and must appear nowhere.
	for _, nf := range result.URLsNotFound {
		if nf.Keyword == "out of range" {
			t.Fatal("out-of-range record leaked into not-found bucket")
		}
	}
}

func TestPipelineMaxURLsCap(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	records := []pipeline.KeywordRecord{
		{URL: ts.URL + "/shoes", Keyword: "running shoes", Position: 4, Impressions: 100},
		{URL: ts.URL + "/optimized", Keyword: "trail guide", Position: 6, Impressions: 100},
	}
	opts := pipeline.Options{
		PositionMin: 3, PositionMax: 20,
		HasImpressions: true, MinImpressions: 10,
		MaxURLs: 1, Workers: 2, LiveCrawl: true,
	}

	p := pipeline.New(crawler.NewHTTPFetcher(5*time.Second), logging.Nop(), nil)
	result, err := p.Run(context.Background(), records, opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Only the first unique URL is crawled; the second record degrades to
	// not-found.
	if len(result.URLsNotFound) != 1 || result.URLsNotFound[0].Keyword != "trail guide" {
		t.Fatalf("unexpected not-found bucket: %#v", result.URLsNotFound)
	}
}

func TestPipelineOfflineMode(t *testing.T) {
	opts := pipeline.DefaultOptions()
	opts.LiveCrawl = false

	p := pipeline.New(nil, logging.Nop(), nil)
	result, err := p.Run(context.Background(), ingest.SampleRecords(), opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.URLsNotFound) != 0 {
		t.Fatalf("sample content never fails, got not-found: %#v", result.URLsNotFound)
	}
	if len(result.CrawlErrors) != 0 {
		t.Fatalf("unexpected crawl errors: %#v", result.CrawlErrors)
	}
	if len(result.StrikingDistance) == 0 {
		t.Fatal("expected striking-distance records from sample data")
	}
}

func TestPipelineInvalidRange(t *testing.T) {
	p := pipeline.New(nil, logging.Nop(), nil)
	_, err := p.Run(context.Background(), nil, pipeline.Options{PositionMin: 20, PositionMax: 3})
	if err == nil {
		t.Fatal("expected error for inverted position range")
	}
}

func TestPipelineEmptyFilteredSet(t *testing.T) {
	records := []pipeline.KeywordRecord{
		{URL: "https://example.com/p", Keyword: "k", Position: 40, Impressions: 100},
	}
	opts := pipeline.DefaultOptions()
	opts.LiveCrawl = false

	p := pipeline.New(nil, logging.Nop(), nil)
	result, err := p.Run(context.Background(), records, opts)
	if err != nil {
		t.Fatalf("empty filtered set must not error: %v", err)
	}
	if len(result.StrikingDistance)+len(result.FullyOptimized)+len(result.URLsNotFound) != 0 {
		t.Fatalf("expected empty buckets, got %#v", result)
	}
}
