package middleware

import (
	"net/http"
	"strconv"
	"time"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
)

// RateLimit returns middleware applying the engine's general request
// window per client IP. Rejections carry a Retry-After header in seconds.
func RateLimit(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			ip := clientIP(r)

			dec := engine.CheckRequest(ip)
			if !dec.Admitted {
				retry := int(dec.RetryAfter / time.Second)
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			// Downstream handlers read the IP from the context, matching
			// what Login expects.
			next.ServeHTTP(w, r.WithContext(authcore.WithClientIP(r.Context(), ip)))
		})
	}
}
