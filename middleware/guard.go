package middleware

import (
	"context"
	"net/http"
	"strings"

	goBindToken "github.com/MrEthical07/goBindToken"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the claims attached by a guard.
func ClaimsFromContext(ctx context.Context) (goBindToken.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(goBindToken.Claims)
	return claims, ok
}

// Guard decodes the bearer token against the request's client context and
// rejects with 401 when no claims come back.
func Guard(codec *goBindToken.Codec) func(http.Handler) http.Handler {
	return guard(codec, nil)
}

func guard(codec *goBindToken.Codec, required []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if codec == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cc := goBindToken.ClientContextFromRequest(r)
			claims := codec.Decode(cc, token)
			if len(claims) == 0 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, key := range required {
				if _, ok := claims[key]; !ok {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
			}

			ctx := goBindToken.WithClientContext(r.Context(), cc)
			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
