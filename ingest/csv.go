// Package ingest turns uploaded keyword exports into pipeline records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/striking-distance/backend/pipeline"
)

// ParseCSV reads a keyword export with a header row. Columns url, keyword
// and position are required; impressions, clicks and ctr are optional and
// default to zero. hasImpressions reports whether an impressions column was
// present, which downstream decides whether the impressions filter applies.
func ParseCSV(r io.Reader) (records []pipeline.KeywordRecord, hasImpressions bool, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, false, fmt.Errorf("empty csv")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"url", "keyword", "position"} {
		if _, ok := cols[required]; !ok {
			return nil, false, fmt.Errorf("missing required column %q", required)
		}
	}
	_, hasImpressions = cols["impressions"]

	records = make([]pipeline.KeywordRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, false, fmt.Errorf("row %d: %w", n+2, err)
		}
		records = append(records, rec)
	}

	return records, hasImpressions, nil
}

func parseRow(row []string, cols map[string]int) (pipeline.KeywordRecord, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := pipeline.KeywordRecord{
		URL:     field("url"),
		Keyword: field("keyword"),
	}
	if rec.URL == "" {
		return rec, fmt.Errorf("empty url")
	}
	if rec.Keyword == "" {
		return rec, fmt.Errorf("empty keyword")
	}

	position, err := strconv.Atoi(field("position"))
	if err != nil {
		return rec, fmt.Errorf("invalid position %q", field("position"))
	}
	if position < 1 {
		return rec, fmt.Errorf("position must be >= 1, got %d", position)
	}
	rec.Position = position

	// Optional numeric columns default to zero when absent or blank.
	if v := field("impressions"); v != "" {
		if rec.Impressions, err = strconv.Atoi(v); err != nil {
			return rec, fmt.Errorf("invalid impressions %q", v)
		}
	}
	if v := field("clicks"); v != "" {
		if rec.Clicks, err = strconv.Atoi(v); err != nil {
			return rec, fmt.Errorf("invalid clicks %q", v)
		}
	}
	if v := field("ctr"); v != "" {
		if rec.CTR, err = strconv.ParseFloat(v, 64); err != nil {
			return rec, fmt.Errorf("invalid ctr %q", v)
		}
	}

	return rec, nil
}
