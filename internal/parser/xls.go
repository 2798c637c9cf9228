package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/sheetgraph/internal/table"
	"github.com/extrame/xls"
)

// XLSParser handles legacy BIFF (.xls) workbooks.
type XLSParser struct{}

func (p *XLSParser) Parse(r io.Reader, filename string) (tbl *table.Table, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	// The BIFF reader panics on some malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			tbl = nil
			err = &ParseError{Filename: filename, Err: fmt.Errorf("corrupt workbook: %v", rec)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	if wb.NumSheets() == 0 {
		return nil, &ParseError{Filename: filename, Err: ErrNoSheet}
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &ParseError{Filename: filename, Err: ErrNoSheet}
	}

	var raw [][]table.Cell
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			raw = append(raw, nil)
			continue
		}
		cells := make([]table.Cell, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, xlsCell(row.Col(c)))
		}
		raw = append(raw, cells)
	}

	return buildTable(raw, filename)
}

// xlsCell types a formatted BIFF value; the reader exposes strings only.
func xlsCell(value string) table.Cell {
	if strings.TrimSpace(value) == "" {
		return table.Cell{}
	}
	if c, ok := numberCell(value); ok {
		return c
	}
	return table.TextCell(value)
}
