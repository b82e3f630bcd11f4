package httpadapter

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimit returns a middleware enforcing a global request rate with
// the given sustained rate and burst size. Requests over the limit
// receive HTTP 429.
func rateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
