package goBindToken

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goBindToken/internal"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// fingerprintLen is the base58 width of a 128-bit UUID.
const fingerprintLen = 22

// Deriver computes client fingerprints within a single namespace.
//
// Deriver values are immutable and safe for concurrent use.
type Deriver struct {
	namespace uuid.UUID
	valid     bool
	now       func() time.Time
}

// NewDeriver returns a Deriver for the given textual namespace. An empty or
// unparsable namespace yields a Deriver whose Derive always returns "".
func NewDeriver(namespace string, now func() time.Time) Deriver {
	if now == nil {
		now = time.Now
	}
	d := Deriver{now: now}
	if namespace == "" {
		return d
	}
	ns, err := uuid.Parse(namespace)
	if err != nil {
		return d
	}
	d.namespace = ns
	d.valid = true
	return d
}

// Derive returns the fingerprint of cc: a name-based (SHA-1, version 5) UUID of
// the user agent followed by the IP, in the Deriver's namespace, rendered in
// base58. Identical inputs always produce identical output.
func (d Deriver) Derive(cc ClientContext) string {
	if !d.valid {
		return ""
	}

	now := cc.Now
	if now.IsZero() {
		now = d.now()
	}

	ua := cc.UserAgent
	if ua == "" && !cc.UserAgentPresent {
		ua = internal.UnreproducibleValue(now.Unix())
	}
	ip := cc.IP
	if !internal.ValidIP(ip) {
		ip = internal.UnreproducibleValue(now.UnixMicro())
	}

	id := uuid.NewSHA1(d.namespace, []byte(ua+ip))
	return encodeBase58(id)
}

func encodeBase58(id uuid.UUID) string {
	s := base58.Encode(id[:])
	if len(s) < fingerprintLen {
		s = strings.Repeat("1", fingerprintLen-len(s)) + s
	}
	return s
}

// GenerateNamespace returns a new random (version 4) UUID in RFC 4122 textual form
// for one-time provisioning. Every call returns a different value.
func GenerateNamespace() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate namespace: %w", err)
	}
	return id.String(), nil
}

// ParseNamespace validates a textual namespace and returns its canonical form.
func ParseNamespace(namespace string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(namespace))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNamespaceInvalid, err)
	}
	return id.String(), nil
}
