package goBindToken

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMetricsDisabledIgnoresUpdates(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false, EnableLatencyHistograms: true})
	m.Inc(MetricEncodeIssued)
	m.Observe(MetricDecodeLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("expected metrics to report disabled")
	}
	if m.Value(MetricEncodeIssued) != 0 {
		t.Fatal("expected no counts when disabled")
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricEncodeIssued)
	nilMetrics.Observe(MetricDecodeLatency, time.Second)
	if nilMetrics.Value(MetricEncodeIssued) != 0 {
		t.Fatal("expected nil metrics to read zero")
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Inc(MetricEncodeIssued)
	m.Inc(MetricEncodeIssued)
	m.Inc(MetricDecodeRejectedContext)
	m.Inc(metricIDCount)
	m.Observe(MetricDecodeLatency, 10*time.Microsecond)
	m.Observe(MetricDecodeLatency, 10*time.Millisecond)
	m.Observe(MetricEncodeIssued, time.Millisecond)

	snap := m.Snapshot()
	if snap.Counters[MetricEncodeIssued] != 2 {
		t.Fatalf("expected 2 issued, got %d", snap.Counters[MetricEncodeIssued])
	}
	if snap.Counters[MetricDecodeRejectedContext] != 1 {
		t.Fatalf("expected 1 context rejection, got %d", snap.Counters[MetricDecodeRejectedContext])
	}
	if _, ok := snap.Counters[MetricDecodeLatency]; ok {
		t.Fatal("latency must not appear as a counter")
	}
	if len(snap.Counters) != int(metricIDCount)-1 {
		t.Fatalf("expected every counter in the snapshot, got %d", len(snap.Counters))
	}

	hist := snap.Histograms[MetricDecodeLatency]
	if len(hist) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(hist))
	}
	if hist[0] != 1 || hist[histBucketCount-1] != 1 {
		t.Fatalf("unexpected bucket distribution %v", hist)
	}
}

func TestMetricsLatencyOptional(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricDecodeLatency, time.Millisecond)
	if _, ok := m.Snapshot().Histograms[MetricDecodeLatency]; ok {
		t.Fatal("expected no histogram when latency is disabled")
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{50 * time.Microsecond, 0},
		{51 * time.Microsecond, 1},
		{250 * time.Microsecond, 2},
		{400 * time.Microsecond, 3},
		{time.Millisecond, 4},
		{2 * time.Millisecond, 5},
		{5 * time.Millisecond, 6},
		{time.Second, 7},
	}
	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestRejectionMetric(t *testing.T) {
	cases := []struct {
		err  error
		want MetricID
	}{
		{ErrCodecDisabled, MetricDecodeDisabled},
		{fmt.Errorf("%w: bad sig", ErrTokenSignature), MetricDecodeRejectedSignature},
		{ErrTokenMalformed, MetricDecodeRejectedMalformed},
		{ErrTokenClaimsMissing, MetricDecodeRejectedClaims},
		{ErrTokenTimeInvalid, MetricDecodeRejectedTime},
		{ErrTokenExpired, MetricDecodeRejectedExpired},
		{ErrTokenNotYetValid, MetricDecodeRejectedNotYetValid},
		{ErrTokenContextMismatch, MetricDecodeRejectedContext},
		{errors.New("unknown"), MetricDecodeRejectedSignature},
	}
	for _, tc := range cases {
		if got := rejectionMetric(tc.err); got != tc.want {
			t.Fatalf("rejectionMetric(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestCodecRecordsDecodeOutcomes(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	c := newTestCodec(t, cfg)

	token := mustEncode(t, c, agentA(), Claims{"uid": 1})
	expired := mustEncode(t, c, agentA(), Claims{"exp": testNow.Unix()})

	c.Decode(agentA(), token)
	c.Decode(agentB(), token)
	c.Decode(agentA(), expired)
	c.Decode(agentA(), "garbage")

	snap := c.MetricsSnapshot()
	want := map[MetricID]uint64{
		MetricEncodeIssued:            2,
		MetricDecodeAccepted:          1,
		MetricDecodeRejectedContext:   1,
		MetricDecodeRejectedExpired:   1,
		MetricDecodeRejectedSignature: 1,
	}
	for id, v := range want {
		if snap.Counters[id] != v {
			t.Fatalf("metric %d: expected %d, got %d", id, v, snap.Counters[id])
		}
	}

	var total uint64
	for _, n := range snap.Histograms[MetricDecodeLatency] {
		total += n
	}
	if total != 4 {
		t.Fatalf("expected 4 latency observations, got %d", total)
	}
}
