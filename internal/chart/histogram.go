package chart

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxBins caps the square-root bin rule.
const MaxBins = 10

// BinCount returns min(MaxBins, ceil(sqrt(n))), never less than 1.
func BinCount(n int) int {
	c := int(math.Ceil(math.Sqrt(float64(n))))
	if c > MaxBins {
		c = MaxBins
	}
	if c < 1 {
		c = 1
	}
	return c
}

// Bin replaces a series with equal-width frequency buckets over its values.
// Bucket i covers [lo+i*w, lo+(i+1)*w); the last bucket is closed on the
// right, so every value lands in exactly one bucket. Labels read
// "<start>-<end>" rounded to one decimal place.
func Bin(points []Point) []Point {
	if len(points) == 0 {
		return []Point{}
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	n := BinCount(len(points))
	width := (hi - lo) / float64(n)
	if hi == lo {
		width = 1
	}

	counts := make([]int, n)
	for _, p := range points {
		counts[bucket(p.Value, lo, width, n)]++
	}

	out := make([]Point, n)
	for i := range n {
		start := lo + float64(i)*width
		end := lo + float64(i+1)*width
		out[i] = Point{
			Label: formatEdge(start) + "-" + formatEdge(end),
			Value: float64(counts[i]),
		}
	}
	return out
}

// bucket finds the bin for v using the same edges the labels are built from,
// so floating-point error in the division cannot move a value across an edge.
func bucket(v, lo, width float64, n int) int {
	i := int(math.Floor((v - lo) / width))
	if i < 0 {
		i = 0
	}
	if i > n-1 {
		i = n - 1
	}
	for i > 0 && v < lo+float64(i)*width {
		i--
	}
	for i < n-1 && v >= lo+float64(i+1)*width {
		i++
	}
	return i
}

func formatEdge(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
