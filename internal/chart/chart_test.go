package chart

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/dgallion1/sheetgraph/internal/table"
)

func ptr(v float64) *float64 { return &v }

func monthsTable() *table.Table {
	return table.New(
		[]string{"name", "value"},
		[][]table.Cell{
			{table.TextCell("Jan"), table.NumberCell(100)},
			{table.TextCell("Feb"), table.NumberCell(200)},
			{table.TextCell("Mar"), table.NumberCell(150)},
		},
		"months.xlsx",
		time.Now(),
	)
}

func TestTransform_PreservesRowOrder(t *testing.T) {
	got := Transform(monthsTable(), "name", "value", nil, nil)
	want := []Point{{"Jan", 100}, {"Feb", 200}, {"Mar", 150}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTransform_MinFilter(t *testing.T) {
	got := Transform(monthsTable(), "name", "value", ptr(120), nil)
	want := []Point{{"Feb", 200}, {"Mar", 150}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTransform_MinAndMaxCombine(t *testing.T) {
	got := Transform(monthsTable(), "name", "value", ptr(100), ptr(150))
	want := []Point{{"Jan", 100}, {"Mar", 150}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("bounds are inclusive: expected %v, got %v", want, got)
	}
}

func TestTransform_UnsetOrUnknownColumns(t *testing.T) {
	tbl := monthsTable()
	cases := []struct{ cat, val string }{
		{"", "value"},
		{"name", ""},
		{"nope", "value"},
		{"name", "nope"},
	}
	for _, c := range cases {
		got := Transform(tbl, c.cat, c.val, nil, nil)
		if got == nil || len(got) != 0 {
			t.Errorf("Transform(%q, %q): expected empty series, got %v", c.cat, c.val, got)
		}
	}
}

func TestTransform_SkipsBlankLabelsAndNonNumericValues(t *testing.T) {
	tbl := table.New(
		[]string{"branch", "deposits"},
		[][]table.Cell{
			{table.TextCell("North"), table.NumberCell(10)},
			{table.Cell{}, table.NumberCell(20)},
			{table.TextCell("South"), table.TextCell("n/a")},
			{table.TextCell("East"), table.Cell{}},
			{table.TextCell("West"), table.TextCell(" 40 ")},
			{table.NumberCell(7), table.NumberCell(0)},
			{table.TextCell("North"), table.NumberCell(5)},
		},
		"", time.Now(),
	)

	got := Transform(tbl, "branch", "deposits", nil, nil)
	want := []Point{{"North", 10}, {"West", 40}, {"7", 0}, {"North", 5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTransform_Idempotent(t *testing.T) {
	tbl := monthsTable()
	a := Transform(tbl, "name", "value", ptr(110), ptr(500))
	b := Transform(tbl, "name", "value", ptr(110), ptr(500))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical output, got %v and %v", a, b)
	}
}

func TestTransform_TighteningFiltersNeverGrowsOutput(t *testing.T) {
	rows := make([][]table.Cell, 0, 50)
	for i := range 50 {
		rows = append(rows, []table.Cell{table.TextCell("r"), table.NumberCell(float64((i * 37) % 101))})
	}
	tbl := table.New([]string{"k", "v"}, rows, "", time.Now())

	prev := len(Transform(tbl, "k", "v", nil, nil))
	for lo := 0.0; lo <= 50; lo += 5 {
		hi := 100 - lo
		n := len(Transform(tbl, "k", "v", ptr(lo), ptr(hi)))
		if n > prev {
			t.Fatalf("min=%v max=%v: output grew from %d to %d", lo, hi, prev, n)
		}
		prev = n
	}
}

func TestTransform_LabelsComeFromCategoryCells(t *testing.T) {
	tbl := monthsTable()
	labels := map[string]bool{}
	for _, row := range tbl.Rows {
		labels[row[0].String()] = true
	}
	for _, p := range Transform(tbl, "name", "value", nil, nil) {
		if !labels[p.Label] {
			t.Errorf("label %q does not come from any row", p.Label)
		}
	}
}

func TestBin_NineValues(t *testing.T) {
	points := make([]Point, 0, 9)
	for i := 1; i <= 9; i++ {
		points = append(points, Point{Label: "x", Value: float64(i)})
	}

	got := Bin(points)
	want := []Point{
		{"1.0-3.7", 3},
		{"3.7-6.3", 3},
		{"6.3-9.0", 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBin_Empty(t *testing.T) {
	got := Bin(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestBin_AllEqualValues(t *testing.T) {
	points := []Point{{"a", 5}, {"b", 5}, {"c", 5}, {"d", 5}}
	got := Bin(points)
	if len(got) != 2 {
		t.Fatalf("expected 2 bins for n=4, got %d", len(got))
	}
	if got[0].Label != "5.0-6.0" || got[0].Value != 4 {
		t.Errorf("expected first bin 5.0-6.0 holding 4, got %+v", got[0])
	}
	if got[1].Label != "6.0-7.0" || got[1].Value != 0 {
		t.Errorf("expected empty second bin 6.0-7.0, got %+v", got[1])
	}
}

func TestBin_SingleValue(t *testing.T) {
	got := Bin([]Point{{"only", -2.25}})
	want := []Point{{"-2.3--1.3", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBin_CountsSumToInput(t *testing.T) {
	sizes := []int{1, 2, 3, 7, 10, 17, 64, 99, 100, 101, 1000}
	for _, n := range sizes {
		points := make([]Point, n)
		for i := range points {
			// Irregular spread including repeated maxima.
			points[i] = Point{Value: math.Mod(float64(i)*0.7310585, 3.3) * 1e3}
		}
		points = append(points, Point{Value: 3300}, Point{Value: 3300})

		bins := Bin(points)
		if len(bins) != BinCount(len(points)) {
			t.Errorf("n=%d: expected %d bins, got %d", len(points), BinCount(len(points)), len(bins))
		}
		total := 0.0
		for _, b := range bins {
			total += b.Value
		}
		if int(total) != len(points) {
			t.Errorf("n=%d: bin counts sum to %v", len(points), total)
		}
	}
}

func TestBin_OrderIndependent(t *testing.T) {
	a := []Point{{"", 3}, {"", 1}, {"", 8}, {"", 4}, {"", 9}}
	b := []Point{{"", 9}, {"", 8}, {"", 4}, {"", 3}, {"", 1}}
	if !reflect.DeepEqual(Bin(a), Bin(b)) {
		t.Errorf("binning depends on input order: %v vs %v", Bin(a), Bin(b))
	}
}

func TestBinCount(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 4: 2, 5: 3, 9: 3, 10: 4, 81: 9, 82: 10, 100: 10, 10000: 10}
	for n, want := range cases {
		if got := BinCount(n); got != want {
			t.Errorf("BinCount(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSeries_DispatchesOnKind(t *testing.T) {
	tbl := monthsTable()
	cfg := Config{Kind: KindBar, CategoryColumn: "name", ValueColumn: "value"}

	if got := Series(tbl, cfg); len(got) != 3 || got[0].Label != "Jan" {
		t.Errorf("expected pointwise series, got %v", got)
	}

	cfg.Kind = KindHistogram
	got := Series(tbl, cfg)
	if len(got) != 2 {
		t.Fatalf("expected 2 histogram bins for 3 values, got %v", got)
	}
	if got[0].Value+got[1].Value != 3 {
		t.Errorf("expected counts to sum to 3, got %v", got)
	}
}

func TestSeries_PieAndDoughnutKeepFirstSlices(t *testing.T) {
	var rows [][]table.Cell
	for i := 0; i < 12; i++ {
		rows = append(rows, []table.Cell{table.TextCell(string(rune('A' + i))), table.NumberCell(float64(i))})
	}
	tbl := table.New([]string{"name", "value"}, rows, "", time.Time{})

	for _, kind := range []Kind{KindPie, KindDoughnut} {
		got := Series(tbl, Config{Kind: kind, CategoryColumn: "name", ValueColumn: "value"})
		if len(got) != MaxSlices {
			t.Fatalf("%s: expected %d slices, got %d", kind, MaxSlices, len(got))
		}
		if got[0].Label != "A" || got[MaxSlices-1].Label != "H" {
			t.Errorf("%s: expected the leading slices in row order, got %v", kind, got)
		}
	}

	if got := Series(tbl, Config{Kind: KindBar, CategoryColumn: "name", ValueColumn: "value"}); len(got) != 12 {
		t.Errorf("bar: expected all 12 points, got %d", len(got))
	}
}

func TestConfigAxesSet(t *testing.T) {
	tbl := monthsTable()
	if !(Config{CategoryColumn: "name", ValueColumn: "value"}).AxesSet(tbl) {
		t.Error("expected axes to be set")
	}
	if (Config{CategoryColumn: "name"}).AxesSet(tbl) {
		t.Error("expected unset value axis")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if got, err := ParseKind(" Histogram "); err != nil || got != KindHistogram {
		t.Errorf("expected case-insensitive match, got %q, %v", got, err)
	}
	if _, err := ParseKind("radar"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNumericColumns(t *testing.T) {
	tbl := table.New(
		[]string{"branch", "deposits", "note", "code"},
		[][]table.Cell{
			{table.TextCell("North"), table.NumberCell(10), table.TextCell("ok"), table.Cell{}},
			{table.TextCell("South"), table.Cell{}, table.Cell{}, table.TextCell("17")},
		},
		"", time.Now(),
	)
	got := NumericColumns(tbl)
	want := []string{"deposits", "code"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestValueRange(t *testing.T) {
	tbl := table.New(
		[]string{"v"},
		[][]table.Cell{{table.NumberCell(2.5)}, {table.TextCell("x")}, {table.NumberCell(-1.2)}, {table.NumberCell(9.1)}},
		"", time.Now(),
	)
	if got := ValueRange(tbl, "v"); got != (Range{Min: -2, Max: 10}) {
		t.Errorf("expected {-2 10}, got %+v", got)
	}
	if got := ValueRange(tbl, "missing"); got != DefaultRange {
		t.Errorf("expected default range, got %+v", got)
	}

	empty := table.New([]string{"v"}, [][]table.Cell{{table.TextCell("x")}}, "", time.Now())
	if got := ValueRange(empty, "v"); got != DefaultRange {
		t.Errorf("expected default range for non-numeric column, got %+v", got)
	}
}
