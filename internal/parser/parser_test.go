package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	cases := []struct {
		name string
		want any
	}{
		{"report.xlsx", &XLSXParser{}},
		{"REPORT.XLSX", &XLSXParser{}},
		{"legacy.xls", &XLSParser{}},
	}
	for _, c := range cases {
		p, err := ForFile(c.name)
		if err != nil {
			t.Fatalf("ForFile(%q): %v", c.name, err)
		}
		switch c.want.(type) {
		case *XLSXParser:
			if _, ok := p.(*XLSXParser); !ok {
				t.Errorf("ForFile(%q): expected XLSXParser, got %T", c.name, p)
			}
		case *XLSParser:
			if _, ok := p.(*XLSParser); !ok {
				t.Errorf("ForFile(%q): expected XLSParser, got %T", c.name, p)
			}
		}
	}

	if _, err := ForFile("data.csv"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("a.xlsx", 1024, 10<<20); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate("a.xlsx", 10<<20, 10<<20); err != nil {
		t.Errorf("a file exactly at the limit is allowed: %v", err)
	}
	if err := Validate("a.xlsx", 10<<20+1, 10<<20); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if err := Validate("a.pdf", 10, 10<<20); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if err := Validate("noext", 10, 10<<20); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if err := Validate("a.xls", DefaultMaxBytes+1, 0); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected default limit to apply, got %v", err)
	}
}

func TestParseFile_RejectsOversize(t *testing.T) {
	data := workbookBytes(t, map[string]any{"A1": "h", "A2": 1})
	_, err := ParseFile(bytes.NewReader(data), "big.xlsx", int64(len(data)-1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestParseFile_RejectsExtension(t *testing.T) {
	_, err := ParseFile(strings.NewReader("a,b\n1,2\n"), "data.csv", 0)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestParseFile_XLSX(t *testing.T) {
	data := workbookBytes(t, map[string]any{"A1": "name", "B1": "value", "A2": "Jan", "B2": 100})
	tbl, err := ParseFile(bytes.NewReader(data), "ok.xlsx", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 1 || tbl.Rows[0][0].String() != "Jan" {
		t.Errorf("unexpected table %+v", tbl)
	}
}

func TestReadUpload(t *testing.T) {
	data, err := ReadUpload(strings.NewReader("12345"), "book.xlsx", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "12345" {
		t.Errorf("unexpected data %q", data)
	}

	if _, err := ReadUpload(strings.NewReader("123456"), "book.xlsx", 5); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if _, err := ReadUpload(strings.NewReader("x"), "book.pdf", 5); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}
