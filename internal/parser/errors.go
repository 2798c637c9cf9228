package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType indicates a file extension other than .xls/.xlsx.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrTooLarge indicates the upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrEmptyWorkbook indicates the first worksheet has no rows.
	ErrEmptyWorkbook = errors.New("worksheet is empty")

	// ErrNoSheet indicates the workbook has no worksheet at all.
	ErrNoSheet = errors.New("no worksheet found")
)

// ParseError wraps any failure to read a workbook.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
