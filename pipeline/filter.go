package pipeline

import "strings"

// Filter applies the position range, the minimum-impressions threshold and
// the blocklist, in that order. It returns the surviving records and the
// records the blocklist removed. Blocklist terms are applied sequentially
// over the shrinking set, so a keyword matching several terms is removed,
// and reported, exactly once - for the first term that matches it.
func Filter(records []KeywordRecord, opts Options) (kept, removed []KeywordRecord) {
	kept = make([]KeywordRecord, 0, len(records))
	for _, rec := range records {
		if rec.Position < opts.PositionMin || rec.Position > opts.PositionMax {
			continue
		}
		if opts.HasImpressions && rec.Impressions < opts.MinImpressions {
			continue
		}
		kept = append(kept, rec)
	}

	for _, term := range opts.Blocklist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		next := kept[:0]
		for _, rec := range kept {
			if strings.Contains(strings.ToLower(rec.Keyword), term) {
				removed = append(removed, rec)
			} else {
				next = append(next, rec)
			}
		}
		kept = next
	}

	return kept, removed
}

// UniqueURLs returns the distinct URLs of records in first-appearance order,
// capped at max (unlimited when max <= 0).
func UniqueURLs(records []KeywordRecord, max int) []string {
	seen := make(map[string]struct{}, len(records))
	urls := make([]string, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.URL]; ok {
			continue
		}
		seen[rec.URL] = struct{}{}
		urls = append(urls, rec.URL)
		if max > 0 && len(urls) == max {
			break
		}
	}
	return urls
}
