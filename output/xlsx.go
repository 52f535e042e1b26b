package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Results"

// xlsxHeader is the column layout: one row per recognized text region,
// with the polygon corners in document order.
var xlsxHeader = []interface{}{
	"Image", "Text", "X1", "Y1", "X2", "Y2", "X3", "Y3", "X4", "Y4",
}

// XLSX writes the batch as a spreadsheet with one row per text region.
// Failed images contribute a single row carrying the error message.
func XLSX(path string, b *Batch) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rowNum := 2
	for _, e := range b.entries {
		if e.Err != nil {
			row := []interface{}{e.Name, "ERROR: " + e.Err.Error()}
			if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return fmt.Errorf("writing row %d: %w", rowNum, err)
			}
			rowNum++
			continue
		}
		for _, rec := range e.Result.Texts {
			row := []interface{}{e.Name, rec.Text}
			for _, p := range rec.Box {
				row = append(row, p.X, p.Y)
			}
			if err := f.SetSheetRow(xlsxSheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
				return fmt.Errorf("writing row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving spreadsheet: %w", err)
	}
	return nil
}
