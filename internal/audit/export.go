package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Audit Log"

// ExportXLSX writes every entry the given pages cover to w as a spreadsheet.
// Intended for offline review by campus security; pages are walked until the
// repository is exhausted.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	headers := []string{"Timestamp", "Actor", "Action", "Entity", "Entity ID", "Metadata"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	f.SetCellStyle(exportSheet, "A1", "F1", headerStyle)

	row := 2
	for page := 1; ; page++ {
		logs, _, err := s.repo.List(ctx, page, 100)
		if err != nil {
			return fmt.Errorf("listing audit logs: %w", err)
		}
		if len(logs) == 0 {
			break
		}

		for _, entry := range logs {
			metadata := ""
			if entry.Metadata != nil {
				if b, err := json.Marshal(entry.Metadata); err == nil {
					metadata = string(b)
				}
			}
			values := []interface{}{
				entry.CreatedAt.Format("2006-01-02 15:04:05"),
				entry.ActorID.String(),
				entry.Action,
				entry.Entity,
				entry.EntityID,
				metadata,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(exportSheet, cell, v)
			}
			row++
		}

		if len(logs) < 100 {
			break
		}
	}

	if err := f.AutoFilter(exportSheet, fmt.Sprintf("A1:F%d", row-1), nil); err != nil {
		return fmt.Errorf("setting filter: %w", err)
	}

	return f.Write(w)
}
