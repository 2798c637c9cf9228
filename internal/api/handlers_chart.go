package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dgallion1/sheetgraph/internal/chart"
)

// Chart states tell the client which placeholder to render.
const (
	stateSelectAxes = "select_axes"
	stateNoData     = "no_data"
	stateReady      = "ready"
)

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cfg, err := chartConfig(q)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	up, found, ok := s.latestUpload(w, r)
	if !ok {
		return
	}

	resp := map[string]any{
		"success":  true,
		"kind":     cfg.Kind,
		"category": cfg.CategoryColumn,
		"value":    cfg.ValueColumn,
		"points":   []chart.Point{},
	}
	switch {
	case !found:
		resp["state"] = stateNoData
	case !cfg.AxesSet(up.Table):
		resp["state"] = stateSelectAxes
	default:
		resp["state"] = stateReady
		resp["points"] = chart.Series(up.Table, cfg)
	}
	writeJSON(w, http.StatusOK, resp)
}

func chartConfig(q url.Values) (chart.Config, error) {
	cfg := chart.Config{
		Kind:           chart.KindBar,
		CategoryColumn: q.Get("category"),
		ValueColumn:    q.Get("value"),
	}
	if v := q.Get("kind"); v != "" {
		k, err := chart.ParseKind(v)
		if err != nil {
			return chart.Config{}, err
		}
		cfg.Kind = k
	}

	var err error
	if cfg.Min, err = boundParam(q, "min"); err != nil {
		return chart.Config{}, err
	}
	if cfg.Max, err = boundParam(q, "max"); err != nil {
		return chart.Config{}, err
	}
	return cfg, nil
}

func boundParam(q url.Values, name string) (*float64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s must be a finite number", name)
	}
	return &f, nil
}
