package stats

import (
	"testing"
	"time"
)

func TestParseStatsSnapshotPercentiles(t *testing.T) {
	s := NewParseStats(time.Hour)
	for i, ms := range []int{100, 200, 300, 400, 500} {
		s.Observe(time.Duration(ms)*time.Millisecond, i+1)
	}

	snap := s.Snapshot()
	if snap.Uploads != 5 {
		t.Fatalf("expected uploads=5, got %d", snap.Uploads)
	}
	if snap.Rows != 15 {
		t.Fatalf("expected rows=15, got %d", snap.Rows)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.WindowSec != 3600 {
		t.Fatalf("expected window=3600, got %d", snap.WindowSec)
	}
}

func TestParseStatsPrunesExpiredSamples(t *testing.T) {
	s := NewParseStats(10 * time.Millisecond)
	s.Observe(100*time.Millisecond, 1)
	s.Fail()
	time.Sleep(25 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Uploads != 0 || snap.Failures != 0 {
		t.Fatalf("expected empty window after prune, got %+v", snap)
	}

	s.Observe(200*time.Millisecond, 3)
	snap = s.Snapshot()
	if snap.Uploads != 1 || snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected a single 200ms sample, got %+v", snap)
	}
}

func TestParseStatsClampsNegativeDuration(t *testing.T) {
	s := NewParseStats(time.Hour)
	s.Observe(-time.Second, 0)
	snap := s.Snapshot()
	if snap.Uploads != 1 || snap.MinMs != 0 {
		t.Fatalf("expected clamped zero duration, got %+v", snap)
	}
}

func TestParseStatsCountsFailures(t *testing.T) {
	s := NewParseStats(time.Hour)
	s.Fail()
	s.Fail()
	if got := s.Snapshot().Failures; got != 2 {
		t.Fatalf("expected 2 failures, got %d", got)
	}
}
