package chart

import (
	"math"

	"github.com/dgallion1/sheetgraph/internal/table"
)

// Transform pairs the category column with the numeric value column, row by
// row. Rows with an empty label or a non-numeric value are skipped, as are
// values below min or above max when those bounds are set. Order is kept and
// duplicate labels are not merged. Unknown or unset columns yield an empty
// series.
func Transform(t *table.Table, categoryColumn, valueColumn string, min, max *float64) []Point {
	ci := t.ColumnIndex(categoryColumn)
	vi := t.ColumnIndex(valueColumn)
	if ci < 0 || vi < 0 {
		return []Point{}
	}

	points := make([]Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		label := cellAt(row, ci).String()
		if label == "" {
			continue
		}
		v, ok := cellAt(row, vi).Float()
		if !ok {
			continue
		}
		if min != nil && v < *min {
			continue
		}
		if max != nil && v > *max {
			continue
		}
		points = append(points, Point{Label: label, Value: v})
	}
	return points
}

func cellAt(row []table.Cell, i int) table.Cell {
	if i < len(row) {
		return row[i]
	}
	return table.Cell{}
}

// NumericColumns returns the headers having at least one cell that coerces
// to a number, in header order.
func NumericColumns(t *table.Table) []string {
	cols := []string{}
	if t == nil {
		return cols
	}
	for i, h := range t.Headers {
		for _, row := range t.Rows {
			if _, ok := cellAt(row, i).Float(); ok {
				cols = append(cols, h)
				break
			}
		}
	}
	return cols
}

// Range is the span offered by the value filter.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRange is used when a column has no numeric values.
var DefaultRange = Range{Min: 0, Max: 100}

// ValueRange returns floor(min) and ceil(max) over the numeric cells of
// column.
func ValueRange(t *table.Table, column string) Range {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return DefaultRange
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range t.Rows {
		v, ok := cellAt(row, idx).Float()
		if !ok {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return DefaultRange
	}
	return Range{Min: math.Floor(lo), Max: math.Ceil(hi)}
}
