package parser

import (
	"io"

	"github.com/dgallion1/sheetgraph/internal/table"
	"github.com/xuri/excelize/v2"
)

// XLSXParser handles Office Open XML workbooks.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &ParseError{Filename: filename, Err: ErrNoSheet}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	raw := make([][]table.Cell, len(rows))
	for rowIdx, row := range rows {
		cells := make([]table.Cell, len(row))
		for colIdx, value := range row {
			if value == "" {
				continue
			}
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, &ParseError{Filename: filename, Err: err}
			}
			typ, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, &ParseError{Filename: filename, Err: err}
			}
			cells[colIdx] = xlsxCell(typ, value)
		}
		raw[rowIdx] = cells
	}

	return buildTable(raw, filename)
}

// xlsxCell types a raw value. Cells without an explicit type attribute are
// numbers in OOXML.
func xlsxCell(typ excelize.CellType, value string) table.Cell {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if c, ok := numberCell(value); ok {
			return c
		}
	case excelize.CellTypeBool:
		if value == "1" {
			return table.TextCell("TRUE")
		}
		return table.TextCell("FALSE")
	}
	return table.TextCell(value)
}
