package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestProfilingManagerReportsCountAvgMinMax(t *testing.T) {
	p := NewProfilingManager()

	sleeps := []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond}
	for _, d := range sleeps {
		d := d
		err := p.Measure("list", func() error {
			time.Sleep(d)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	report := p.Report("device-xyz")
	if report.DeviceInfo != "device-xyz" {
		t.Errorf("got device info %q, want device-xyz", report.DeviceInfo)
	}

	stats, ok := report.Stats["list"]
	if !ok {
		t.Fatal("expected stats for \"list\"")
	}
	if stats.Count != 3 {
		t.Errorf("got count %d, want 3", stats.Count)
	}
	if stats.MinMs <= 0 || stats.MaxMs < stats.MinMs {
		t.Errorf("got min %d max %d, want 0 < min <= max", stats.MinMs, stats.MaxMs)
	}
	if stats.AvgMs <= 0 {
		t.Errorf("got avg %v, want > 0", stats.AvgMs)
	}
	if stats.P95Ms < stats.MinMs || stats.P95Ms > stats.MaxMs {
		t.Errorf("got p95 %d outside [%d, %d]", stats.P95Ms, stats.MinMs, stats.MaxMs)
	}
}

func TestProfilingManagerRecordsErroredCallsToo(t *testing.T) {
	p := NewProfilingManager()

	boom := errors.New("device busy")
	err := p.Measure("read", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}

	report := p.Report("")
	if report.Stats["read"].Count != 1 {
		t.Errorf("got count %d, want 1 even though the measured call errored", report.Stats["read"].Count)
	}
}
