package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/dgallion1/sheetgraph/internal/chart"
	"github.com/dgallion1/sheetgraph/internal/parser"
)

type chartOptions struct {
	file     string
	category string
	value    string
	kind     string
	min      float64
	max      float64
	format   string
	maxBytes int64
}

func newChartCommand() *cobra.Command {
	opts := &chartOptions{}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute a chart series from a workbook",
		Long: `Parse the first worksheet of an .xls or .xlsx file and print the series
the dashboard would plot for the chosen columns.`,
		Example: `  # Monthly sales as a bar series
  sheetgraph chart --file sales.xlsx --category Month --value Sales

  # Histogram of balances above 1000, as JSON
  sheetgraph chart --file accounts.xls --category Account --value Balance \
    --kind histogram --min 1000 --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return runChart(cmd.OutOrStdout(), opts, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Workbook to read (.xls or .xlsx)")
	f.StringVar(&opts.category, "category", "", "Column supplying labels")
	f.StringVar(&opts.value, "value", "", "Column supplying values")
	f.StringVarP(&opts.kind, "kind", "k", string(chart.KindBar), "Chart kind: line, bar, pie, doughnut, area, scatter, histogram")
	f.Float64Var(&opts.min, "min", 0, "Drop values below this bound")
	f.Float64Var(&opts.max, "max", 0, "Drop values above this bound")
	f.StringVarP(&opts.format, "format", "o", "table", "Output format: table, json")
	f.Int64Var(&opts.maxBytes, "max-bytes", parser.DefaultMaxBytes, "Largest workbook accepted")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func (o *chartOptions) config(cmd *cobra.Command) (chart.Config, error) {
	kind, err := chart.ParseKind(o.kind)
	if err != nil {
		return chart.Config{}, err
	}
	cfg := chart.Config{
		Kind:           kind,
		CategoryColumn: o.category,
		ValueColumn:    o.value,
	}
	if cmd.Flags().Changed("min") {
		v := o.min
		cfg.Min = &v
	}
	if cmd.Flags().Changed("max") {
		v := o.max
		cfg.Max = &v
	}
	return cfg, nil
}

func runChart(w io.Writer, opts *chartOptions, cfg chart.Config) error {
	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tbl, err := parser.ParseFile(f, opts.file, opts.maxBytes)
	if err != nil {
		return err
	}
	if !cfg.AxesSet(tbl) {
		return fmt.Errorf("columns %q and %q must both exist; available: %v", cfg.CategoryColumn, cfg.ValueColumn, tbl.Headers)
	}

	points := chart.Series(tbl, cfg)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	case "table", "":
		return renderPoints(w, cfg, points)
	default:
		return fmt.Errorf("unknown output format: %s", opts.format)
	}
}

func renderPoints(w io.Writer, cfg chart.Config, points []chart.Point) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "(0 points)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Column names are user data; keep their case.
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	valueHeader := cfg.ValueColumn
	if cfg.Kind == chart.KindHistogram {
		valueHeader = "Count"
	}
	t.AppendHeader(table.Row{cfg.CategoryColumn, valueHeader})
	for _, p := range points {
		t.AppendRow(table.Row{p.Label, strconv.FormatFloat(p.Value, 'f', -1, 64)})
	}
	t.AppendFooter(table.Row{"points", len(points)})
	t.Render()
	return nil
}
