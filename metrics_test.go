package sessiongate

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoop(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricRefreshLatency, 10*time.Millisecond)

	if m.Enabled() {
		t.Fatal("metrics should report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("disabled counter incremented: %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("disabled snapshot not empty: %+v", snap)
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLogout)
	m.Observe(MetricRefreshLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics should report disabled")
	}
	if got := m.Value(MetricLogout); got != 0 {
		t.Fatalf("nil counter returned %d", got)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricRefreshSuccess)
	m.Inc(MetricRefreshSuccess)
	m.Inc(MetricRefreshFailure)

	if got := m.Value(MetricRefreshSuccess); got != 2 {
		t.Fatalf("refresh success = %d, want 2", got)
	}
	if got := m.Value(MetricRefreshFailure); got != 1 {
		t.Fatalf("refresh failure = %d, want 1", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricRefreshSuccess] != 2 {
		t.Fatalf("snapshot refresh success = %d", snap.Counters[MetricRefreshSuccess])
	}
	if snap.Counters[MetricAuthCheck] != 0 {
		t.Fatalf("untouched counter = %d", snap.Counters[MetricAuthCheck])
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricRefreshLatency, 3*time.Millisecond)
	m.Observe(MetricRefreshLatency, 40*time.Millisecond)
	m.Observe(MetricRefreshLatency, 40*time.Millisecond)
	m.Observe(MetricRefreshLatency, 2*time.Second)

	// Only the refresh latency metric carries a histogram.
	m.Observe(MetricLoginSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricRefreshLatency]
	if !ok {
		t.Fatal("refresh latency histogram missing from snapshot")
	}
	if len(buckets) != histBucketCount {
		t.Fatalf("histogram has %d buckets, want %d", len(buckets), histBucketCount)
	}
	if buckets[0] != 1 {
		t.Fatalf("<=5ms bucket = %d, want 1", buckets[0])
	}
	if buckets[3] != 2 {
		t.Fatalf("<=50ms bucket = %d, want 2", buckets[3])
	}
	if buckets[7] != 1 {
		t.Fatalf("overflow bucket = %d, want 1", buckets[7])
	}
	if _, ok := snap.Histograms[MetricLoginSuccess]; ok {
		t.Fatal("unexpected histogram for login counter")
	}
}

func TestBucketIndexBounds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{100 * time.Millisecond, 4},
		{250 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{time.Hour, 7},
	}

	for _, tc := range tests {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const (
		workers = 8
		perG    = 1000
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricAuthCheck)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricAuthCheck); got != workers*perG {
		t.Fatalf("auth check counter = %d, want %d", got, workers*perG)
	}
}
