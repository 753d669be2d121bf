// Package goBindToken issues and validates stateless signed tokens that are bound to
// the client context they were issued in.
//
// Encode copies the caller's claims, stamps them with the issue time ("isa") and a
// fingerprint of the client ("aud"), and signs them. The fingerprint is a name-based
// UUID of the user agent and source IP inside a per-deployment namespace, so it is
// stable for one client and meaningless across deployments. Decode verifies the
// signature, enforces "exp", recomputes the fingerprint from the current request and
// returns the caller's claims only if everything matches.
//
// # Failure model
//
// Decode is fail-closed and opaque: a bad signature, a malformed payload, an expired
// token, a different client, or a disabled Codec all yield the same empty [Claims].
// Reasons are kept internal and surface only through [Metrics] and [AuditSink].
//
// # What this package must NOT do
//
//   - Keep server-side token state. Tokens cannot be revoked before "exp".
//   - Read ambient request state. Client context and time are passed in explicitly
//     through [ClientContext].
//   - Mutate a [Codec] after [NewCodec]; a Codec is safe for concurrent use.
package goBindToken
