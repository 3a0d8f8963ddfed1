package middleware

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/errors"
	"github.com/aaravmahajanofficial/art-storefront/internal/utils/response"
)

// Limiter is satisfied by repository.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Duration, error)
}

// RateLimit throttles per client address. It guards the discount endpoints
// against code guessing. A limiter failure lets the request through.
func RateLimit(limiter Limiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			logger := LoggerFromContext(r.Context())

			key := clientAddr(r)

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("Rate limiter unavailable", slog.Any("error", err))
				next(w, r)
				return
			}

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				logger.Warn("Rate limit exceeded", slog.String("client", key), slog.Int("retryAfter", seconds))
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				response.Error(w, errors.ResourceExhaustedError("Too many attempts, try again later"))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			next(w, r)
		}
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
