package goBindToken

import (
	"errors"
	"sync/atomic"
	"time"
)

// MetricID identifies a codec counter.
type MetricID uint16

const (
	// MetricEncodeIssued counts tokens issued.
	MetricEncodeIssued MetricID = iota
	// MetricEncodeDisabled counts Encode calls on a disabled codec.
	MetricEncodeDisabled
	// MetricEncodeFailed counts signing failures.
	MetricEncodeFailed
	// MetricDecodeAccepted counts tokens that passed every check.
	MetricDecodeAccepted
	// MetricDecodeDisabled counts Decode calls on a disabled codec.
	MetricDecodeDisabled
	// MetricDecodeRejectedSignature counts signature or structure failures.
	MetricDecodeRejectedSignature
	// MetricDecodeRejectedMalformed counts payloads that could not be normalized.
	MetricDecodeRejectedMalformed
	// MetricDecodeRejectedClaims counts payloads missing isa or aud.
	MetricDecodeRejectedClaims
	// MetricDecodeRejectedTime counts non-numeric exp, nbf or iat values.
	MetricDecodeRejectedTime
	// MetricDecodeRejectedExpired counts expired tokens.
	MetricDecodeRejectedExpired
	// MetricDecodeRejectedNotYetValid counts tokens with nbf or iat in the future.
	MetricDecodeRejectedNotYetValid
	// MetricDecodeRejectedContext counts fingerprint mismatches.
	MetricDecodeRejectedContext
	// MetricDecodeLatency is the Decode latency histogram.
	MetricDecodeLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters. A nil or disabled Metrics ignores updates.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to the counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the latency histogram. Only MetricDecodeLatency is a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricDecodeLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. A disabled Metrics returns empty maps.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricDecodeLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricDecodeLatency].buckets[i])
		}
		s.Histograms[MetricDecodeLatency] = buckets
	}

	return s
}

// Decode is local computation, so the buckets are finer than a network-bound
// validator would use.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 50:
		return 0
	case us <= 100:
		return 1
	case us <= 250:
		return 2
	case us <= 500:
		return 3
	case us <= 1000:
		return 4
	case us <= 2500:
		return 5
	case us <= 5000:
		return 6
	default:
		return 7
	}
}

var rejectionMetrics = []struct {
	err error
	id  MetricID
}{
	{ErrCodecDisabled, MetricDecodeDisabled},
	{ErrTokenMalformed, MetricDecodeRejectedMalformed},
	{ErrTokenClaimsMissing, MetricDecodeRejectedClaims},
	{ErrTokenTimeInvalid, MetricDecodeRejectedTime},
	{ErrTokenExpired, MetricDecodeRejectedExpired},
	{ErrTokenNotYetValid, MetricDecodeRejectedNotYetValid},
	{ErrTokenContextMismatch, MetricDecodeRejectedContext},
}

func rejectionMetric(err error) MetricID {
	for _, r := range rejectionMetrics {
		if errors.Is(err, r.err) {
			return r.id
		}
	}
	return MetricDecodeRejectedSignature
}
