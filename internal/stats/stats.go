// Package stats keeps a rolling window of upload parse timings.
package stats

import (
	"slices"
	"sync"
	"time"
)

type parseSample struct {
	at       time.Time
	duration time.Duration
	rows     int
}

// Snapshot aggregates the samples currently inside the window.
type Snapshot struct {
	Uploads   int     `json:"uploads"`
	Failures  int     `json:"failures"`
	Rows      int     `json:"rows"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
	WindowSec int64   `json:"window_sec"`
}

// ParseStats records how long workbook parsing takes.
type ParseStats struct {
	mu       sync.Mutex
	samples  []parseSample
	failures []time.Time
	window   time.Duration
}

func NewParseStats(window time.Duration) *ParseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &ParseStats{
		samples: make([]parseSample, 0, 64),
		window:  window,
	}
}

// Observe records a successful parse of rows data rows.
func (s *ParseStats) Observe(d time.Duration, rows int) {
	if d < 0 {
		d = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.samples = append(s.samples, parseSample{at: now, duration: d, rows: rows})
}

// Fail records a rejected or unparseable upload.
func (s *ParseStats) Fail() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.failures = append(s.failures, now)
}

func (s *ParseStats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	snap := Snapshot{
		Failures:  len(s.failures),
		WindowSec: int64(s.window / time.Second),
	}
	if len(s.samples) == 0 {
		return snap
	}

	ms := make([]int64, len(s.samples))
	var sum int64
	for i, sm := range s.samples {
		ms[i] = sm.duration.Milliseconds()
		sum += ms[i]
		snap.Rows += sm.rows
	}
	slices.Sort(ms)

	snap.Uploads = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm parseSample) bool {
		return sm.at.Before(cutoff)
	})
	s.failures = slices.DeleteFunc(s.failures, func(at time.Time) bool {
		return at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	frac := rank - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*frac
}
