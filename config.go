package goBindToken

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goBindToken/jwt"
)

// Config holds everything a Codec needs. It is read once by NewCodec and never
// mutated afterwards; NewCodec keeps its own copy of SigningKey.
//
// A Config without SigningKey or Algorithm is valid but disabled: Encode returns ""
// and Decode returns empty Claims.
type Config struct {
	SigningKey []byte
	Algorithm  string // JWS alg name, e.g. "HS256", "RS256", "EdDSA"
	Namespace  string // RFC 4122 UUID text, see GenerateNamespace
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous audit dispatch. When Enabled is false the
// sink passed to WithAuditSink is called synchronously.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a disabled Config with metrics on and audit dispatch off.
// Callers fill in SigningKey, Algorithm and Namespace.
func DefaultConfig() Config {
	return Config{
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// Enabled reports whether both a signing key and an algorithm are configured.
func (c *Config) Enabled() bool {
	return c != nil && len(c.SigningKey) > 0 && c.Algorithm != ""
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.SigningKey = cloneBytes(cfg.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports malformed values. Missing key or algorithm is not an error
// (see Lint); a value that is present but unusable is.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}

	if c.Algorithm != "" && !jwt.Supported(c.Algorithm) {
		return fmt.Errorf("unsupported algorithm %q", c.Algorithm)
	}

	if c.Namespace != "" {
		if _, err := ParseNamespace(c.Namespace); err != nil {
			return err
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

// LintWarning is a non-fatal configuration finding.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is an ordered list of findings.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// String joins the warnings one per line.
func (ws LintWarnings) String() string {
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		lines = append(lines, w.Code+": "+w.Message)
	}
	return strings.Join(lines, "\n")
}

const minHMACKeyLen = 32

// Lint returns findings that do not stop a Codec from being built but almost
// always indicate a deployment mistake.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	if c == nil {
		return ws
	}

	if !c.Enabled() {
		ws = append(ws, LintWarning{
			Code:    "signing_disabled",
			Message: "signing key or algorithm missing; Encode and Decode are no-ops",
		})
	}
	if c.Namespace == "" {
		ws = append(ws, LintWarning{
			Code:    "namespace_missing",
			Message: "namespace missing; issued tokens can never be decoded",
		})
	}
	if jwt.IsSymmetric(c.Algorithm) && len(c.SigningKey) > 0 && len(c.SigningKey) < minHMACKeyLen {
		ws = append(ws, LintWarning{
			Code:    "hmac_key_short",
			Message: fmt.Sprintf("HMAC key is %d bytes; use at least %d", len(c.SigningKey), minHMACKeyLen),
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_blocking",
			Message: "audit dispatch blocks callers when the buffer is full",
		})
	}

	return ws
}
