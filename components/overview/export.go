package overview

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Visao Geral"

// Export writes the rows of the last applied load as an XLSX workbook.
func (c *Controller) Export(out io.Writer) error {
	c.mu.Lock()
	rows := append([]Row(nil), c.rows...)
	c.mu.Unlock()
	return WriteWorkbook(out, rows)
}

// WriteWorkbook encodes rows as a single-sheet workbook with a header row.
func WriteWorkbook(out io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("overview: export sheet: %w", err)
	}
	for col, header := range TableColumns {
		if err := setCell(f, col+1, 1, header); err != nil {
			return err
		}
	}
	for i, row := range rows {
		cert := ""
		if row.HasCert && row.CertID != "" {
			cert = CertificateURL(row.CertID)
		}
		values := []string{row.DDZ, row.Escola, row.Professor, row.Ano, row.Turma, cert}
		for col, value := range values {
			if err := setCell(f, col+1, i+2, value); err != nil {
				return err
			}
		}
	}
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("overview: write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("overview: export cell: %w", err)
	}
	if err := f.SetCellValue(exportSheet, cell, value); err != nil {
		return fmt.Errorf("overview: export cell %s: %w", cell, err)
	}
	return nil
}
