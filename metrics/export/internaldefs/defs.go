package internaldefs

import (
	goBindToken "github.com/MrEthical07/goBindToken"
)

// CounterDef names one codec counter for export.
type CounterDef struct {
	ID   goBindToken.MetricID
	Name string
	Help string
}

// HistogramDef names one codec histogram for export.
type HistogramDef struct {
	ID   goBindToken.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for audit events lost to backpressure.
const AuditDroppedName = "bindtoken_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in output order.
var CounterDefs = []CounterDef{
	{ID: goBindToken.MetricEncodeIssued, Name: "bindtoken_encode_issued_total", Help: "Tokens issued."},
	{ID: goBindToken.MetricEncodeDisabled, Name: "bindtoken_encode_disabled_total", Help: "Encode calls on a codec without key or algorithm."},
	{ID: goBindToken.MetricEncodeFailed, Name: "bindtoken_encode_failed_total", Help: "Encode calls where signing failed."},
	{ID: goBindToken.MetricDecodeAccepted, Name: "bindtoken_decode_accepted_total", Help: "Tokens accepted."},
	{ID: goBindToken.MetricDecodeDisabled, Name: "bindtoken_decode_disabled_total", Help: "Decode calls on a codec without key or algorithm."},
	{ID: goBindToken.MetricDecodeRejectedSignature, Name: "bindtoken_decode_rejected_signature_total", Help: "Tokens rejected for signature or structure."},
	{ID: goBindToken.MetricDecodeRejectedMalformed, Name: "bindtoken_decode_rejected_malformed_total", Help: "Tokens whose payload could not be normalized."},
	{ID: goBindToken.MetricDecodeRejectedClaims, Name: "bindtoken_decode_rejected_claims_total", Help: "Tokens missing isa or aud."},
	{ID: goBindToken.MetricDecodeRejectedTime, Name: "bindtoken_decode_rejected_time_invalid_total", Help: "Tokens with a non-numeric exp, nbf or iat."},
	{ID: goBindToken.MetricDecodeRejectedExpired, Name: "bindtoken_decode_rejected_expired_total", Help: "Expired tokens."},
	{ID: goBindToken.MetricDecodeRejectedNotYetValid, Name: "bindtoken_decode_rejected_not_yet_valid_total", Help: "Tokens with nbf or iat in the future."},
	{ID: goBindToken.MetricDecodeRejectedContext, Name: "bindtoken_decode_rejected_context_total", Help: "Tokens presented from a different client context."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goBindToken.MetricDecodeLatency, Name: "bindtoken_decode_latency_seconds", Help: "Decode latency histogram."},
}

// HistogramBounds are the upper bounds of the codec latency buckets, in seconds.
var HistogramBounds = []string{
	"0.00005",
	"0.0001",
	"0.00025",
	"0.0005",
	"0.001",
	"0.0025",
	"0.005",
	"+Inf",
}

// HistogramBoundSuffix renders HistogramBounds as instrument name suffixes.
var HistogramBoundSuffix = []string{
	"0_00005",
	"0_0001",
	"0_00025",
	"0_0005",
	"0_001",
	"0_0025",
	"0_005",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
