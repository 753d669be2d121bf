// Package jwt is the default signing backend for goBindToken: it signs map claims into
// compact JWS tokens and verifies them, using github.com/golang-jwt/jwt/v5.
//
// Only signature and structure are checked here. Expiry, not-before and audience rules
// belong to the codec, which applies them with its own fail-closed semantics.
//
// # What this package must NOT do
//
//   - Accept the "none" algorithm or any algorithm other than the one requested.
//   - Import goBindToken (the root package depends on this one).
package jwt
