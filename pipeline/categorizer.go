package pipeline

import (
	"sort"

	"github.com/striking-distance/backend/crawler"
)

// Categorize partitions the filtered records into the three output buckets.
// A record whose URL is missing from pages, or present with a failed fetch,
// goes to not-found without being matched or scored. Every remaining record
// is matched and routed to fully-optimized (all three signals true) or
// striking-distance (at least one false). The striking-distance bucket is
// sorted by opportunity score descending; equal scores keep their input
// order. A page that fetched successfully but came back empty is still
// matched, yielding all-false signals rather than a not-found entry.
func Categorize(records []KeywordRecord, pages map[string]crawler.PageContent) (striking []ScoredRecord, optimized []MatchedRecord, notFound []NotFoundRecord) {
	for _, rec := range records {
		page, ok := pages[rec.URL]
		if !ok || page.Failed() {
			notFound = append(notFound, NotFoundRecord{
				URL:      rec.URL,
				Keyword:  rec.Keyword,
				Position: rec.Position,
			})
			continue
		}

		m := Match(rec, page)
		if m.InTitle && m.InH1 && m.InContent {
			optimized = append(optimized, m)
			continue
		}
		striking = append(striking, Score(m))
	}

	sort.SliceStable(striking, func(i, j int) bool {
		return striking[i].OpportunityScore > striking[j].OpportunityScore
	})

	return striking, optimized, notFound
}
