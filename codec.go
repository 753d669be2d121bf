package goBindToken

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goBindToken/jwt"
)

// SigningBackend produces and verifies compact signed tokens. The jwt package
// provides the default implementation.
type SigningBackend interface {
	Sign(claims map[string]any, key []byte, alg string) (string, error)
	Verify(token string, key []byte, alg string) (map[string]any, error)
}

// Option customizes a Codec at construction.
type Option func(*Codec)

// WithBackend replaces the default jwt backend.
func WithBackend(backend SigningBackend) Option {
	return func(c *Codec) {
		if backend != nil {
			c.backend = backend
		}
	}
}

// WithClock sets the clock used when a ClientContext carries no Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAuditSink sets where audit events go. With Config.Audit.Enabled the sink is
// fed asynchronously; otherwise it is called inline.
func WithAuditSink(sink AuditSink) Option {
	return func(c *Codec) {
		c.sink = sink
	}
}

// Codec issues and validates client-bound tokens.
//
// A Codec is immutable after NewCodec and safe for concurrent use. Encode and
// Decode never report why they failed: Encode returns "" and Decode returns empty
// Claims for every failure.
type Codec struct {
	cfg     Config
	backend SigningBackend
	deriver Deriver
	now     func() time.Time
	metrics *Metrics
	sink    AuditSink
	audit   *auditDispatcher
}

// NewCodec builds a Codec from cfg. It never fails: a Config without key or
// algorithm produces a disabled Codec, and other problems surface as failed
// operations. Call Config.Validate and Config.Lint at startup to catch them early.
func NewCodec(cfg Config, opts ...Option) *Codec {
	c := &Codec{
		cfg:     cloneConfig(cfg),
		backend: jwt.NewBackend(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.deriver = NewDeriver(c.cfg.Namespace, c.now)
	c.metrics = NewMetrics(c.cfg.Metrics)
	if c.sink != nil {
		c.audit = newAuditDispatcher(c.cfg.Audit, c.sink)
	}
	return c
}

// Enabled reports whether the Codec has both a signing key and an algorithm.
func (c *Codec) Enabled() bool {
	return c != nil && c.cfg.Enabled()
}

// Encode signs a copy of claims with isa set to the current time and aud set to
// the fingerprint of cc. It returns "" when the Codec is disabled or signing fails.
// Caller-supplied isa and aud values are overwritten.
func (c *Codec) Encode(cc ClientContext, claims Claims) string {
	if c == nil {
		return ""
	}

	token, err := c.encode(cc, claims)
	if err != nil {
		if errors.Is(err, ErrCodecDisabled) {
			c.metrics.Inc(MetricEncodeDisabled)
		} else {
			c.metrics.Inc(MetricEncodeFailed)
		}
		c.emitAudit(auditEventTokenIssueFailed, false, cc, err)
		return ""
	}

	c.metrics.Inc(MetricEncodeIssued)
	c.emitAudit(auditEventTokenIssued, true, cc, nil)
	return token
}

func (c *Codec) encode(cc ClientContext, claims Claims) (string, error) {
	if !c.Enabled() {
		return "", ErrCodecDisabled
	}

	cc.Now = c.resolveNow(cc)

	payload := claims.clone()
	payload[ClaimIssuedAt] = cc.Now.Unix()
	payload[ClaimAudience] = c.deriver.Derive(cc)

	token, err := c.backend.Sign(map[string]any(payload), c.cfg.SigningKey, c.cfg.Algorithm)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenSign, err)
	}
	if token == "" {
		return "", ErrTokenSign
	}
	return token, nil
}

// Decode verifies token and checks it against cc. On success it returns the
// caller's claims without isa and aud. On any failure, including a disabled
// Codec, it returns empty (non-nil) Claims.
func (c *Codec) Decode(cc ClientContext, token string) Claims {
	if c == nil {
		return Claims{}
	}

	start := time.Now()
	claims, err := c.decode(cc, token)
	c.metrics.Observe(MetricDecodeLatency, time.Since(start))

	if err != nil {
		c.metrics.Inc(rejectionMetric(err))
		c.emitAudit(auditEventTokenRejected, false, cc, err)
		return Claims{}
	}

	c.metrics.Inc(MetricDecodeAccepted)
	c.emitAudit(auditEventTokenAccepted, true, cc, nil)
	return claims
}

// decode is Decode without the collapse: each failed step returns its own error.
func (c *Codec) decode(cc ClientContext, token string) (Claims, error) {
	if !c.Enabled() {
		return nil, ErrCodecDisabled
	}

	cc.Now = c.resolveNow(cc)

	payload, err := c.backend.Verify(token, c.cfg.SigningKey, c.cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenSignature, err)
	}

	claims, err := normalizeClaims(payload)
	if err != nil {
		return nil, err
	}

	if err := validateClaims(claims, cc.Now, func() string { return c.deriver.Derive(cc) }); err != nil {
		return nil, err
	}

	delete(claims, ClaimIssuedAt)
	delete(claims, ClaimAudience)
	return claims, nil
}

// Fingerprint returns the value Encode would place in aud for cc.
func (c *Codec) Fingerprint(cc ClientContext) string {
	if c == nil {
		return ""
	}
	cc.Now = c.resolveNow(cc)
	return c.deriver.Derive(cc)
}

func (c *Codec) resolveNow(cc ClientContext) time.Time {
	if !cc.Now.IsZero() {
		return cc.Now
	}
	return c.now()
}

// MetricsSnapshot returns the current counters.
func (c *Codec) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return NewMetrics(MetricsConfig{}).Snapshot()
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (c *Codec) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close flushes and stops the audit dispatcher, if any. The Codec keeps working
// afterwards; further audit events are discarded.
func (c *Codec) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}
