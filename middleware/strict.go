package middleware

import (
	"net/http"

	goBindToken "github.com/MrEthical07/goBindToken"
)

// RequireClaims is Guard that additionally rejects tokens lacking any of keys.
// RequireClaims(codec, "exp") refuses tokens issued without an expiry.
func RequireClaims(codec *goBindToken.Codec, keys ...string) func(http.Handler) http.Handler {
	return guard(codec, keys)
}
