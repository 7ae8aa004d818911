// Package middleware holds HTTP middleware shared by the API routes.
package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierrors "github.com/hrygo/finsense/server/internal/errors"
)

// RateLimiter applies a token-bucket limit per key (client IP for the chat
// endpoint). LLM-backed requests are expensive, so the bucket is small.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

// NewRateLimiter creates a rate limiter allowing rps requests per second
// with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		limit:  rate.Limit(rps),
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rl.limit, rl.burst)
	rl.limits[key] = limiter
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait blocks until a request is allowed or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Middleware returns an echo middleware rejecting over-limit requests with
// 429 and a JSON error body.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				limitErr := apierrors.RateLimitExceeded("rate limit exceeded, retry later")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": limitErr.Message,
					"code":  string(limitErr.Code),
				})
			}
			return next(c)
		}
	}
}
