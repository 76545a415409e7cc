package pipeline

import (
	"strings"

	"github.com/striking-distance/backend/crawler"
)

// pageTitleLimit caps the page title carried through to the report rows.
const pageTitleLimit = 100

// Contains reports whether keyword occurs in text as a case-insensitive
// substring. An empty keyword or empty text never matches.
func Contains(keyword, text string) bool {
	if keyword == "" || text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// Match computes the three presence signals of a record against its page.
func Match(rec KeywordRecord, page crawler.PageContent) MatchedRecord {
	m := MatchedRecord{
		KeywordRecord: rec,
		InTitle:       Contains(rec.Keyword, page.Title),
		InH1:          Contains(rec.Keyword, page.H1),
		InContent:     Contains(rec.Keyword, page.Content),
	}

	title := page.Title
	if len([]rune(title)) > pageTitleLimit {
		title = string([]rune(title)[:pageTitleLimit])
	}
	m.PageTitle = title

	for _, present := range []bool{m.InTitle, m.InH1, m.InContent} {
		if present {
			m.OptimizationScore++
		}
	}
	return m
}
