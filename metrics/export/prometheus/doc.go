// Package prometheus renders goBindToken codec metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] wraps a Codec and exposes an [http.Handler]. Counter names
// are bindtoken_*_total; the single histogram is bindtoken_decode_latency_seconds.
// Nothing is registered globally; callers mount the Handler.
package prometheus
