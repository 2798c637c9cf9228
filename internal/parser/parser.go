package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/sheetgraph/internal/table"
)

// Parser converts raw workbook bytes into a Table.
type Parser interface {
	Parse(r io.Reader, filename string) (*table.Table, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
}

// DefaultMaxBytes is the upload ceiling used when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// now is swapped in tests.
var now = time.Now

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return &XLSXParser{}, nil
	case ".xls":
		return &XLSParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Validate checks an upload's name and size before any parsing happens.
func Validate(filename string, size, maxBytes int64) error {
	if !IsSupportedExtension(filename) {
		return fmt.Errorf("%w: only .xls and .xlsx files are allowed", ErrUnsupportedType)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if size > maxBytes {
		return fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return nil
}

// ReadUpload checks the filename, then reads at most maxBytes from r. It
// fails with ErrUnsupportedType or ErrTooLarge before any parsing happens.
func ReadUpload(r io.Reader, filename string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := Validate(filename, 0, maxBytes); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	if err := Validate(filename, int64(len(data)), maxBytes); err != nil {
		return nil, err
	}
	return data, nil
}

// ParseBytes parses workbook bytes already accepted by ReadUpload.
func ParseBytes(data []byte, filename string) (*table.Table, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(data), filename)
}

// ParseFile validates and parses an upload in one step. It returns either a
// fully populated Table or an error; never a partial result.
func ParseFile(r io.Reader, filename string, maxBytes int64) (*table.Table, error) {
	data, err := ReadUpload(r, filename, maxBytes)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data, filename)
}

// numberCell types value as a number when it parses to a finite float.
// NaN and infinities stay text so every stored table encodes as JSON.
func numberCell(value string) (table.Cell, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return table.Cell{}, false
	}
	return table.NumberCell(f), true
}

// buildTable turns raw rows into a Table: the first non-blank row supplies
// headers and every later row that is not entirely blank becomes data.
func buildTable(raw [][]table.Cell, filename string) (*table.Table, error) {
	for len(raw) > 0 && table.RowIsBlank(raw[0]) {
		raw = raw[1:]
	}
	if len(raw) == 0 {
		return nil, &ParseError{Filename: filename, Err: ErrEmptyWorkbook}
	}

	headers := make([]string, len(raw[0]))
	for i, c := range raw[0] {
		headers[i] = c.String()
	}

	rows := make([][]table.Cell, 0, len(raw)-1)
	for _, row := range raw[1:] {
		if table.RowIsBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	return table.New(headers, rows, filepath.Base(filename), now()), nil
}
