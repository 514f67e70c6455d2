package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// NewRateLimiter returns a middleware that admits at most rps requests per
// second on average with bursts of up to burst, shared across all clients.
// Rejected requests get 429 Too Many Requests with a Retry-After header.
// rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if delay := res.Delay(); delay > 0 {
				// Give the token back: this request is rejected, not queued.
				res.Cancel()
				w.Header().Set("Retry-After", retryAfter(delay))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter renders delay as whole seconds, rounded up and at least 1.
func retryAfter(delay time.Duration) string {
	secs := int(math.Ceil(delay.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
