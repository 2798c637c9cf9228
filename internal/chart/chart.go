// Package chart turns a parsed table into chart-ready series.
package chart

import (
	"fmt"
	"strings"

	"github.com/dgallion1/sheetgraph/internal/table"
)

// Kind is the chart type requested by the client.
type Kind string

const (
	KindLine      Kind = "line"
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindDoughnut  Kind = "doughnut"
	KindArea      Kind = "area"
	KindScatter   Kind = "scatter"
	KindHistogram Kind = "histogram"
)

// Kinds lists every supported chart kind in display order.
var Kinds = []Kind{KindLine, KindBar, KindPie, KindDoughnut, KindArea, KindScatter, KindHistogram}

// ParseKind validates a chart kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind: %q", s)
}

// Point is one labelled value of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Config is the per-session chart selection. Empty column names and nil
// bounds mean "unset".
type Config struct {
	Kind           Kind
	CategoryColumn string
	ValueColumn    string
	Min            *float64
	Max            *float64
}

// AxesSet reports whether both columns are chosen and present in t.
func (c Config) AxesSet(t *table.Table) bool {
	return t.ColumnIndex(c.CategoryColumn) >= 0 && t.ColumnIndex(c.ValueColumn) >= 0
}

// MaxSlices caps how many leading points a pie or doughnut chart shows.
const MaxSlices = 8

// Series computes the points to hand to the renderer for cfg.
func Series(t *table.Table, cfg Config) []Point {
	points := Transform(t, cfg.CategoryColumn, cfg.ValueColumn, cfg.Min, cfg.Max)
	switch cfg.Kind {
	case KindHistogram:
		return Bin(points)
	case KindPie, KindDoughnut:
		if len(points) > MaxSlices {
			points = points[:MaxSlices]
		}
	}
	return points
}
