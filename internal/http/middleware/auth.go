package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ashok9315-cmyk/profolia.art/internal/utils/jwt"
	"github.com/ashok9315-cmyk/profolia.art/internal/utils/response"
)

type contextKey string

const ProfileIDKey contextKey = "profileID"

// AuthMiddleware creates a middleware that validates JWT tokens and extracts
// the owning profile ID. Tokens are issued by the main site's auth service;
// this service only verifies them against the shared secret.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Authorization header required")))
				return
			}

			// Check if the header starts with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid authorization header format")))
				return
			}

			// Extract the token
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Token not provided")))
				return
			}

			// Extract profile ID from token
			profileID, err := jwt.ExtractProfileIDFromToken(token, jwtSecret)
			if err != nil {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("Invalid token")))
				return
			}

			// Add profile ID to request context
			ctx := context.WithValue(r.Context(), ProfileIDKey, profileID)
			r = r.WithContext(ctx)

			// Call the next handler
			next.ServeHTTP(w, r)
		})
	}
}

// GetProfileIDFromContext extracts the profile ID from the request context
func GetProfileIDFromContext(ctx context.Context) (string, bool) {
	profileID, ok := ctx.Value(ProfileIDKey).(string)
	return profileID, ok
}
