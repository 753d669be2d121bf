package otel

import (
	"context"
	"errors"
	"fmt"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/MrEthical07/goBindToken/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goBindToken.MetricsSnapshot
	AuditDropped() uint64
}

// reading is what one collection sees: a snapshot plus the audit drop count.
type reading struct {
	snapshot goBindToken.MetricsSnapshot
	dropped  uint64
}

// binding ties an observable instrument to the value it reports.
type binding struct {
	instrument metric.Int64Observable
	value      func(reading) uint64
}

// OTelExporter publishes codec metrics through observable instruments. Codec
// counters become counters; latency buckets and counts become cumulative gauges.
// A single callback reads one snapshot per collection.
type OTelExporter struct {
	source       metricsSource
	bindings     []binding
	registration metric.Registration
}

// NewOTelExporter registers instruments on meter that read from codec.
func NewOTelExporter(meter metric.Meter, codec *goBindToken.Codec) (*OTelExporter, error) {
	if codec == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, codec)
}

// NewOTelExporterFromSource registers instruments on meter that read from source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}

	counter := func(name, help string, value func(reading) uint64) error {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
		if err != nil {
			return fmt.Errorf("create observable counter %s: %w", name, err)
		}
		e.bindings = append(e.bindings, binding{instrument: ins, value: value})
		return nil
	}
	gauge := func(name, help string, value func(reading) uint64) error {
		ins, err := meter.Int64ObservableGauge(name, metric.WithDescription(help))
		if err != nil {
			return fmt.Errorf("create observable gauge %s: %w", name, err)
		}
		e.bindings = append(e.bindings, binding{instrument: ins, value: value})
		return nil
	}

	for _, def := range internaldefs.CounterDefs {
		id := def.ID
		if err := counter(def.Name, def.Help, func(r reading) uint64 { return r.snapshot.Counters[id] }); err != nil {
			return nil, err
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		id := def.ID
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			bucket := func(r reading) uint64 {
				return cumulative(r, id)[i]
			}
			if err := gauge(def.Name+"_bucket_le_"+suffix, "Cumulative histogram bucket count.", bucket); err != nil {
				return nil, err
			}
		}
		count := func(r reading) uint64 {
			buckets := cumulative(r, id)
			return buckets[len(buckets)-1]
		}
		if err := gauge(def.Name+"_count", "Histogram total sample count.", count); err != nil {
			return nil, err
		}
	}

	dropped := func(r reading) uint64 { return r.dropped }
	if err := counter(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, dropped); err != nil {
		return nil, err
	}

	observables := make([]metric.Observable, len(e.bindings))
	for i, b := range e.bindings {
		observables[i] = b.instrument
	}

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	r := reading{
		snapshot: e.source.MetricsSnapshot(),
		dropped:  e.source.AuditDropped(),
	}
	for _, b := range e.bindings {
		observer.ObserveInt64(b.instrument, int64(b.value(r)))
	}
	return nil
}

func cumulative(r reading, id goBindToken.MetricID) [8]uint64 {
	return internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(r.snapshot.Histograms[id]))
}

// Close unregisters the callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
