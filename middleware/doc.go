// Package middleware adapts a goBindToken.Codec to net/http.
//
// # Guards
//
//   - [Guard] rejects requests whose bearer token does not decode for the caller.
//   - [RequireClaims] is Guard plus a set of claim keys that must be present.
//   - [Attach] never rejects; it attaches the client context and, when the token
//     decodes, the claims.
//
// Every adapter derives the client context with goBindToken.ClientContextFromRequest
// and stores it on the request context, so handlers can issue new tokens bound to
// the same client. Rejections are a bare 401 with no reason; the codec's audit sink
// and metrics carry the reason.
package middleware
