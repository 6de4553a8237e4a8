// Package export renders the match list as a workbook and packs the data
// directory into a ZIP archive.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"rpscreen/internal/screening/models"
)

const matchesSheet = "Matches"

var matchColumns = []any{
	"Customer ID", "Customer Name", "Restricted Party ID", "Restricted Party",
	"Reason", "Source", "Similarity", "Match Type", "Hold Type", "DType", "Match Date",
}

// MatchesWorkbook writes one row per match, in list order, under a header row.
func MatchesWorkbook(matches []models.Match) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", matchesSheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(matchesSheet, "A1", &matchColumns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, m := range matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			m.CustomerID,
			m.Customer.Name,
			m.RestrictedPartyID,
			m.RestrictedParty.Name,
			m.RestrictedParty.Reason,
			m.RestrictedParty.Source,
			m.Similarity,
			string(m.MatchType),
			deref(m.HoldType),
			deref(m.DType),
			m.MatchDate.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(matchesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write match %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
