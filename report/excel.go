// Package report renders pipeline results as a multi-sheet Excel workbook.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/striking-distance/backend/pipeline"
)

const (
	sheetStrikingDistance = "Striking Distance"
	sheetAllChecksPassed  = "All Checks Passed"
	sheetKeywordsBlocked  = "Keywords Blocked"
	sheetURLsNotFound     = "URLs Not Found"
	sheetAllKeywordData   = "All Keyword Data"
)

// WriteExcel writes a workbook with one sheet per output dataset plus the
// full input dataset, matching the report layout consumed downstream.
func WriteExcel(w io.Writer, result *pipeline.Result, allRecords []pipeline.KeywordRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetStrikingDistance); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{sheetStrikingDistance, strikingHeaders, strikingRows(result.StrikingDistance)},
		{sheetAllChecksPassed, optimizedHeaders, optimizedRows(result.FullyOptimized)},
		{sheetKeywordsBlocked, blockedHeaders, blockedRows(result.BlocklistRemoved)},
		{sheetURLsNotFound, notFoundHeaders, notFoundRows(result.URLsNotFound)},
		{sheetAllKeywordData, allDataHeaders, allDataRows(allRecords)},
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			return err
		}
	}

	return f.Write(w)
}

var (
	strikingHeaders = []string{
		"URL", "Keyword", "Position", "Impressions",
		"In Title", "In H1", "In Content",
		"Opportunity Score", "Recommendations",
	}
	optimizedHeaders = []string{"URL", "Keyword", "Position"}
	blockedHeaders   = []string{"URL", "Keyword", "Position"}
	notFoundHeaders  = []string{"URL", "Keyword"}
	allDataHeaders   = []string{"URL", "Keyword", "Position", "Impressions", "Clicks", "CTR"}
)

func strikingRows(records []pipeline.ScoredRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.URL, r.Keyword, r.Position, r.Impressions,
			r.InTitle, r.InH1, r.InContent,
			r.OpportunityScore, strings.Join(r.Recommendations, " | "),
		})
	}
	return rows
}

func optimizedRows(records []pipeline.MatchedRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.URL, r.Keyword, r.Position})
	}
	return rows
}

func blockedRows(records []pipeline.KeywordRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.URL, r.Keyword, r.Position})
	}
	return rows
}

func notFoundRows(records []pipeline.NotFoundRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.URL, r.Keyword})
	}
	return rows
}

func allDataRows(records []pipeline.KeywordRecord) [][]interface{} {
	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, []interface{}{r.URL, r.Keyword, r.Position, r.Impressions, r.Clicks, r.CTR})
	}
	return rows
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("sheet %s: %w", name, err)
			}
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}

	// Freeze the header row.
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("sheet %s: %w", name, err)
	}

	for col, header := range headers {
		width := float64(len(header))
		if width < 15 {
			width = 15
		}
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, width); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	return nil
}
