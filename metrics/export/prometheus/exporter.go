package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/MrEthical07/goBindToken/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

type metricsSource interface {
	MetricsSnapshot() goBindToken.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders codec metrics in Prometheus text exposition format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter creates a Prometheus exporter that reads from codec.
func NewPrometheusExporter(codec *goBindToken.Codec) *PrometheusExporter {
	return &PrometheusExporter{source: codec}
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from any value
// exposing MetricsSnapshot and AuditDropped.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves Render on every request.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics, or "" when metrics are disabled and no
// audit event was dropped.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	e := encoder{}
	e.b.Grow(4096)
	for _, def := range internaldefs.CounterDefs {
		e.family(def.Name, def.Help, "counter")
		e.sample(def.Name, "", snapshot.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))
		e.family(def.Name, def.Help, "histogram")
		for i, le := range internaldefs.HistogramBounds {
			e.sample(def.Name+"_bucket", `le="`+le+`"`, buckets[i])
		}
		e.sample(def.Name+"_count", "", buckets[len(buckets)-1])
		// Snapshots carry bucket counts only.
		e.sample(def.Name+"_sum", "", 0)
	}
	e.family(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	e.sample(internaldefs.AuditDroppedName, "", dropped)

	return e.b.String()
}

type encoder struct {
	b strings.Builder
}

func (e *encoder) family(name, help, kind string) {
	help = strings.ReplaceAll(help, `\`, `\\`)
	help = strings.ReplaceAll(help, "\n", `\n`)
	e.b.WriteString("# HELP " + name + " " + help + "\n")
	e.b.WriteString("# TYPE " + name + " " + kind + "\n")
}

func (e *encoder) sample(name, labels string, value uint64) {
	e.b.WriteString(name)
	if labels != "" {
		e.b.WriteString("{" + labels + "}")
	}
	e.b.WriteByte(' ')
	e.b.WriteString(strconv.FormatUint(value, 10))
	e.b.WriteByte('\n')
}
