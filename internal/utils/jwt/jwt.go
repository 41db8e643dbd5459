package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CreateToken issues an HS256 token with the profile ID as the uid claim.
// Tokens are normally minted by the main site's auth service; this helper
// exists for tests and local development.
func CreateToken(profileID, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid": profileID,
		"iat": now.Unix(),
		"exp": now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ExtractProfileIDFromToken validates the token signature and expiry and
// returns the profile ID it was issued for.
func ExtractProfileIDFromToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	profileID, ok := claims["uid"].(string)
	if !ok || profileID == "" {
		return "", fmt.Errorf("token missing profile claim")
	}

	return profileID, nil
}
