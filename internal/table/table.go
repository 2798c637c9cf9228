package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CellKind distinguishes numeric, textual and blank cells.
type CellKind uint8

const (
	Blank CellKind = iota
	Number
	Text
)

// Cell is a single spreadsheet value. The zero value is blank.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
}

// NumberCell returns a numeric cell.
func NumberCell(v float64) Cell { return Cell{Kind: Number, Num: v} }

// TextCell returns a textual cell. An empty string yields a blank cell.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Str: s}
}

// IsBlank reports whether the cell holds nothing.
func (c Cell) IsBlank() bool {
	return c.Kind == Blank || (c.Kind == Text && c.Str == "")
}

// String coerces the cell to text. Blank cells become "".
func (c Cell) String() string {
	switch c.Kind {
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case Text:
		return c.Str
	default:
		return ""
	}
}

// Float coerces the cell to a finite number. Text is parsed after trimming
// surrounding whitespace; blank, unparseable and non-finite values report false.
func (c Cell) Float() (float64, bool) {
	var v float64
	switch c.Kind {
	case Number:
		v = c.Num
	case Text:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return math.NaN(), false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), false
		}
		v = f
	default:
		return math.NaN(), false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case Number:
		return json.Marshal(c.Num)
	case Text:
		return json.Marshal(c.Str)
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = Cell{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextCell(s)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("cell: %w", err)
		}
		*c = NumberCell(f)
	}
	return nil
}

// Table is a parsed worksheet: a header row plus data rows. Every row has
// exactly len(Headers) cells. A Table is replaced wholesale, never edited.
type Table struct {
	Headers    []string  `json:"headers"`
	Rows       [][]Cell  `json:"rows"`
	SourceName string    `json:"fileName"`
	ImportedAt time.Time `json:"uploadedAt"`
}

// New builds a Table, padding short rows with blank cells and truncating
// rows wider than the header.
func New(headers []string, rows [][]Cell, sourceName string, importedAt time.Time) *Table {
	width := len(headers)
	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		norm := make([]Cell, width)
		copy(norm, row)
		out = append(out, norm)
	}
	return &Table{
		Headers:    append([]string(nil), headers...),
		Rows:       out,
		SourceName: sourceName,
		ImportedAt: importedAt,
	}
}

// ColumnIndex returns the position of the first header equal to name, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil || name == "" {
		return -1
	}
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Preview returns at most n leading rows.
func (t *Table) Preview(n int) [][]Cell {
	if t == nil || n <= 0 {
		return [][]Cell{}
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// RowIsBlank reports whether every cell of a row is empty.
func RowIsBlank(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
