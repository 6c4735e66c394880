// Package excel exports debate outcomes to spreadsheet files.
package excel

import (
	"fmt"
	"strconv"

	"agora/domain/debate"
	"agora/domain/tally"

	"github.com/xuri/excelize/v2"
)

// DebateRow is one exported debate outcome
type DebateRow struct {
	Debate *debate.Debate
	Result tally.Result
}

var resultHeaders = []string{
	"id", "title", "status", "winner_side", "for_votes", "against_votes",
	"for_percentage", "against_percentage", "margin", "total_votes", "created_at",
}

// ResultsWriter writes debate outcomes to an xlsx workbook
type ResultsWriter struct {
	sheet string
}

// NewResultsWriter creates a results writer targeting Sheet1
func NewResultsWriter() *ResultsWriter {
	return &ResultsWriter{sheet: "Sheet1"}
}

// Write saves the given debate outcomes to path as an xlsx workbook
func (w *ResultsWriter) Write(path string, rows []DebateRow) error {
	f := excelize.NewFile()

	// Ensure Sheet1 exists and is active.
	if idx, err := f.GetSheetIndex(w.sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(w.sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(w.sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := w.rowValues(row)
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(w.sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save results workbook: %w", err)
	}
	return nil
}

func (w *ResultsWriter) rowValues(row DebateRow) []string {
	d := row.Debate
	res := row.Result

	winner := ""
	if d.WinnerSide != nil {
		winner = string(*d.WinnerSide)
	}

	return []string{
		d.ID.String(),
		d.Title,
		string(d.Status),
		winner,
		strconv.Itoa(res.ForVotes),
		strconv.Itoa(res.AgainstVotes),
		strconv.FormatFloat(res.ForPercentage, 'f', 1, 64),
		strconv.FormatFloat(res.AgainstPercentage, 'f', 1, 64),
		strconv.Itoa(res.Margin),
		strconv.Itoa(res.TotalVotes),
		d.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
