package goBindToken

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"math"
	"time"
)

// Reserved claim keys.
const (
	// ClaimIssuedAt holds the issue time in epoch seconds. Set by Encode, stripped by Decode.
	ClaimIssuedAt = "isa"
	// ClaimAudience holds the client fingerprint. Set by Encode, stripped by Decode.
	ClaimAudience = "aud"
	// ClaimExpiry is an optional caller-supplied expiry in epoch seconds.
	ClaimExpiry = "exp"

	claimNotBefore = "nbf"
	claimJWTIssued = "iat"
)

// Claims is the caller-visible payload of a token.
//
// Decoded numbers are normalized: integral JSON numbers become int64, all others
// float64.
type Claims map[string]any

func (c Claims) clone() Claims {
	out := make(Claims, len(c)+2)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// normalizeClaims re-encodes a verified payload through JSON so that whatever
// shape the backend produced becomes a plain map.
func normalizeClaims(payload any) (Claims, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, ErrTokenMalformed
	}

	m, ok := normalizeValue(decoded).(map[string]any)
	if !ok {
		return nil, ErrTokenClaimsMissing
	}
	return Claims(m), nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeValue(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeValue(inner)
		}
		return t
	default:
		return v
	}
}

// validateClaims runs the structural, temporal and fingerprint checks in that
// order. Any failure is terminal.
func validateClaims(claims Claims, now time.Time, fingerprint func() string) error {
	if len(claims) == 0 || claims[ClaimIssuedAt] == nil || claims[ClaimAudience] == nil {
		return ErrTokenClaimsMissing
	}

	nowSec := float64(now.Unix())

	if v := claims[ClaimExpiry]; v != nil {
		exp, ok := numericClaim(v)
		if !ok {
			return ErrTokenTimeInvalid
		}
		if nowSec-exp >= 0 {
			return ErrTokenExpired
		}
	}

	for _, key := range []string{claimNotBefore, claimJWTIssued} {
		v := claims[key]
		if v == nil {
			continue
		}
		ts, ok := numericClaim(v)
		if !ok {
			return ErrTokenTimeInvalid
		}
		if ts > nowSec {
			return ErrTokenNotYetValid
		}
	}

	aud, ok := claims[ClaimAudience].(string)
	if !ok || aud == "" {
		return ErrTokenContextMismatch
	}
	expected := fingerprint()
	if expected == "" || subtle.ConstantTimeCompare([]byte(aud), []byte(expected)) != 1 {
		return ErrTokenContextMismatch
	}
	return nil
}

func numericClaim(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
