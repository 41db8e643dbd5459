package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/ashok9315-cmyk/profolia.art/internal/ratelimit"
	"github.com/ashok9315-cmyk/profolia.art/internal/utils/response"
)

type RateLimitConfig struct {
	redisClient *redis.Client
	limiters    map[string]*ratelimit.TokenBucket
}

func NewRateLimitConfig(redisClient *redis.Client) *RateLimitConfig {
	config := &RateLimitConfig{
		redisClient: redisClient,
		limiters:    make(map[string]*ratelimit.TokenBucket),
	}

	// Configure rate limits for different actions
	// POST /api/media: 20/min per profile
	config.limiters["upload"] = ratelimit.NewTokenBucket(redisClient, 20, 20)

	// POST /api/media/archive: archives fan out into many uploads, so they
	// get a much tighter budget. 5/min per profile
	config.limiters["archive"] = ratelimit.NewTokenBucket(redisClient, 5, 5)

	// POST /api/media/order: 30/min per profile
	config.limiters["reorder"] = ratelimit.NewTokenBucket(redisClient, 30, 30)

	return config
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get profile ID from context (assumes auth middleware ran first)
			profileID, ok := GetProfileIDFromContext(r.Context())
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("profile not authenticated")))
				return
			}

			// Get the appropriate rate limiter
			limiter, exists := rlc.limiters[action]
			if !exists {
				// If no rate limiter configured for this action, allow the request
				next.ServeHTTP(w, r)
				return
			}

			// Check if the profile is allowed to perform this action
			allowed, err := limiter.Allow(r.Context(), profileID, action)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			// Set rate limit headers either way
			remaining, _ := limiter.GetRemaining(r.Context(), profileID, action)
			w.Header().Set("X-RateLimit-Limit", getLimitForAction(action))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", "60") // 1 minute window

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			// Allow the request to proceed
			next.ServeHTTP(w, r)
		})
	}
}

// Helper function to get the limit for display in headers
func getLimitForAction(action string) string {
	switch action {
	case "upload":
		return "20"
	case "archive":
		return "5"
	case "reorder":
		return "30"
	default:
		return "100" // default fallback
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(http.HandlerFunc(handler))
}
