package ingest

import "github.com/striking-distance/backend/pipeline"

// SampleRecords returns a small demo dataset: five URLs times four keyword
// rows each, covering the whole striking-distance band.
func SampleRecords() []pipeline.KeywordRecord {
	urls := []string{
		"https://example.com/page1",
		"https://example.com/page2",
		"https://example.com/page3",
		"https://example.com/page4",
		"https://example.com/page5",
	}
	keywords := []string{
		"best running shoes",
		"running shoes review",
		"marathon training tips",
		"beginner running guide",
		"running shoe brands",
	}
	positions := []int{4, 7, 12, 15, 8, 5, 9, 18, 3, 11, 6, 14, 19, 4, 10, 13, 16, 5, 9, 20}
	impressions := []int{1200, 800, 500, 300, 1500}
	clicks := []int{45, 20, 10, 5, 55}
	ctrs := []float64{3.75, 2.5, 2.0, 1.67, 3.67}

	records := make([]pipeline.KeywordRecord, 0, len(positions))
	for i, position := range positions {
		records = append(records, pipeline.KeywordRecord{
			URL:         urls[i%len(urls)],
			Keyword:     keywords[i%len(keywords)],
			Position:    position,
			Impressions: impressions[i%len(impressions)],
			Clicks:      clicks[i%len(clicks)],
			CTR:         ctrs[i%len(ctrs)],
		})
	}
	return records
}
