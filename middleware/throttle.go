package middleware

import (
	"errors"
	"net/http"
	"time"

	goBindToken "github.com/MrEthical07/goBindToken"
	"github.com/MrEthical07/goBindToken/internal/rate"
	"github.com/redis/go-redis/v9"
)

// RejectionLimiter counts rejected token presentations per client IP.
type RejectionLimiter struct {
	limiter *rate.Limiter
}

// NewRejectionLimiter allows maxRejections 401 responses per IP within each
// window before answering 429.
func NewRejectionLimiter(client redis.UniversalClient, maxRejections int, window time.Duration) *RejectionLimiter {
	return &RejectionLimiter{limiter: rate.New(client, rate.Config{
		MaxRejections: maxRejections,
		Window:        window,
	})}
}

// Throttle wraps a guarded handler. Clients over their rejection budget get 429
// without reaching the guard; every 401 the guard writes is counted, and a
// successful response clears the count for that IP. Throttle fails closed with
// 503 when Redis cannot be read.
func Throttle(l *RejectionLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || l.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := goBindToken.ClientContextFromRequest(r).IP
			rejections, err := l.limiter.Check(r.Context(), ip)
			if err != nil {
				if errors.Is(err, rate.ErrRateLimited) {
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			switch {
			case sw.status == http.StatusUnauthorized:
				_ = l.limiter.RecordRejection(r.Context(), ip)
			case sw.status < http.StatusBadRequest && rejections > 0:
				_ = l.limiter.Reset(r.Context(), ip)
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
