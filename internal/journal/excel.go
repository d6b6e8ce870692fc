package journal

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{"Time", "Project", "Resource", "Booking", "Action", "Outcome", "Detail"}

// WriteWorkbook renders entries as a single-sheet xlsx workbook.
func WriteWorkbook(entries []Entry, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Journal"
	f.SetSheetName("Sheet1", sheet)

	if err := writeRow(f, sheet, 1, headerCells()); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for i, e := range entries {
		cells := []interface{}{
			e.At.UTC().Format(time.RFC3339),
			e.ProjectID,
			e.ResourceID,
			e.BookingID,
			e.Action,
			e.Outcome,
			e.Detail,
		}
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerCells() []interface{} {
	cells := make([]interface{}, len(exportColumns))
	for i, c := range exportColumns {
		cells[i] = c
	}
	return cells
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, val := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}
