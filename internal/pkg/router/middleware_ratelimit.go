package router

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/ratelimit"
)

// RateLimit limits requests per client IP. Routes that share a bucket
// name share one counter. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, bucket string, limit int, window time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), bucket+":"+clientIP(r), limit, window)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable, allowing request", "bucket", bucket, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(clock.CeilSeconds(res.RetryAfter)))
				writeJSON(w, errorResponse{Error: "Too many requests, please try later."}, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
