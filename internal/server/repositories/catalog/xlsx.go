package catalog

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// decode reads the first sheet of an xlsx workbook. The first row is the
// header; data rows are padded so every column has the same length.
func decode(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	header := rows[0]
	t := &Table{Columns: make([]Column, len(header))}
	for i, name := range header {
		t.Columns[i] = Column{Name: name, Values: make([]string, len(rows)-1)}
	}
	for r, row := range rows[1:] {
		for c := range t.Columns {
			if c < len(row) {
				t.Columns[c].Values[r] = row[c]
			}
		}
	}
	return t, nil
}

// numericColumns are written as numbers so spreadsheet tools can sum them.
var numericColumns = map[string]bool{ColWeight: true, ColPalletCoef: true}

// encode writes t as a single-sheet workbook. Blank cells are left empty.
func encode(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	rows := t.Rows()
	for ci, col := range t.Columns {
		for r := 0; r < rows; r++ {
			v := col.Value(r)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, r+2)
			if err != nil {
				return nil, err
			}
			var value any = v
			if numericColumns[col.Name] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					value = n
				}
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialise workbook: %w", err)
	}
	return buf.Bytes(), nil
}
