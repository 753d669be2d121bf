package middleware

import (
	"context"
	"net/http"

	goBindToken "github.com/MrEthical07/goBindToken"
)

// Attach stores the client context on every request and the claims when a bearer
// token decodes. It never rejects, which suits issuing endpoints such as login.
func Attach(codec *goBindToken.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cc := goBindToken.ClientContextFromRequest(r)
			ctx := goBindToken.WithClientContext(r.Context(), cc)

			if token, ok := bearerToken(r.Header.Get("Authorization")); ok && codec != nil {
				if claims := codec.Decode(cc, token); len(claims) > 0 {
					ctx = context.WithValue(ctx, claimsContextKey{}, claims)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
