// Package xlsx renders summary reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"zaad/internal/aggregate"
	"zaad/internal/sheets"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheetNames maps each table of sheets.Tables to its worksheet.
var sheetNames = []string{"Overview", "Over balance", "Under balance", "Daily", "Monthly"}

// Build creates a workbook with one worksheet per report table.
func Build(rep aggregate.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range sheets.Tables(rep) {
		name := sheetNames[i]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, t, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeTable(f *excelize.File, sheet string, t sheets.Table, headerStyle int) error {
	if err := f.SetCellValue(sheet, "A1", t.Title); err != nil {
		return err
	}
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(t.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Header), 2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}

// Write streams the workbook for rep to w.
func Write(w io.Writer, rep aggregate.Report) error {
	f, err := Build(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// FileExporter writes each export to Dir/zaad-summary-<date>.xlsx.
type FileExporter struct {
	Dir string
}

var _ sheets.ReportExporter = FileExporter{}

func (e FileExporter) Export(ctx context.Context, rep aggregate.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(e.Dir, FileName(rep))
	if err := SaveAs(path, rep); err != nil {
		return "", err
	}
	return path, nil
}

func FileName(rep aggregate.Report) string {
	return fmt.Sprintf("zaad-summary-%s.xlsx", rep.ReferenceDate)
}

func SaveAs(path string, rep aggregate.Report) error {
	f, err := Build(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
