package goBindToken

import "errors"

// Rejection reasons. These never cross Encode or Decode; they feed metrics, audit
// events and tests.
var (
	// ErrCodecDisabled is returned internally when the signing key or algorithm is unset.
	ErrCodecDisabled = errors.New("codec disabled: signing key or algorithm missing")
	// ErrTokenSign is returned internally when the signing backend fails to produce a token.
	ErrTokenSign = errors.New("token signing failed")
	// ErrTokenSignature is returned internally when signature verification fails.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenMalformed is returned internally when a verified payload cannot be normalized.
	ErrTokenMalformed = errors.New("token payload malformed")
	// ErrTokenClaimsMissing is returned internally when isa or aud is absent.
	ErrTokenClaimsMissing = errors.New("token required claims missing")
	// ErrTokenTimeInvalid is returned internally when exp, nbf or iat is not numeric.
	ErrTokenTimeInvalid = errors.New("token time claim invalid")
	// ErrTokenExpired is returned internally when exp has been reached.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNotYetValid is returned internally when nbf or iat lies in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
	// ErrTokenContextMismatch is returned internally when the fingerprint does not match.
	ErrTokenContextMismatch = errors.New("token client context mismatch")
	// ErrNamespaceInvalid is returned when a namespace is not an RFC 4122 UUID.
	ErrNamespaceInvalid = errors.New("invalid namespace")
)
