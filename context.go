package goBindToken

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/goBindToken/internal"
)

// ClientContext carries the request-scoped values a fingerprint is derived from.
//
// A missing UserAgent or an IP that is not a valid address literal is replaced by
// a clock-derived stand-in during derivation, so tokens issued without them can
// never be validated later. An empty UserAgent counts as missing unless
// UserAgentPresent is set, which ClientContextFromRequest does whenever the
// header was sent, even with an empty value. A zero Now means the codec clock is
// used.
type ClientContext struct {
	UserAgent        string
	UserAgentPresent bool
	IP               string
	Now              time.Time
}

// forwardingHeaders lists the headers consulted for the client IP, in priority order.
var forwardingHeaders = []string{
	"Client-IP",
	"X-Forwarded-For",
	"X-Forwarded",
	"X-Cluster-Client-IP",
	"Forwarded-For",
	"Forwarded",
}

// ClientContextFromRequest extracts the user agent and source IP from r.
//
// The IP is the first valid address found in the comma-separated values of the
// forwarding headers (Client-IP, X-Forwarded-For, X-Forwarded, X-Cluster-Client-IP,
// Forwarded-For, Forwarded), falling back to the host part of r.RemoteAddr. When
// nothing validates the IP is left empty.
func ClientContextFromRequest(r *http.Request) ClientContext {
	if r == nil {
		return ClientContext{}
	}

	values := make([]string, 0, len(forwardingHeaders)+1)
	for _, name := range forwardingHeaders {
		values = append(values, r.Header.Values(name)...)
	}
	values = append(values, remoteHost(r.RemoteAddr))

	ip, _ := internal.FirstValidIP(values...)
	cc := ClientContext{IP: ip}
	if agents := r.Header.Values("User-Agent"); len(agents) > 0 {
		cc.UserAgent = agents[0]
		cc.UserAgentPresent = true
	}
	return cc
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

type clientContextKey struct{}

// WithClientContext attaches cc to ctx. The middleware package stores the extracted
// request context this way so handlers can issue tokens bound to the same client.
func WithClientContext(ctx context.Context, cc ClientContext) context.Context {
	return context.WithValue(ctx, clientContextKey{}, cc)
}

// ClientContextFromContext returns the ClientContext attached by WithClientContext.
func ClientContextFromContext(ctx context.Context) (ClientContext, bool) {
	if ctx == nil {
		return ClientContext{}, false
	}
	cc, ok := ctx.Value(clientContextKey{}).(ClientContext)
	return cc, ok
}
