package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("profile-42", "test-secret")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	profileID, err := ExtractProfileIDFromToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ExtractProfileIDFromToken: %v", err)
	}
	if profileID != "profile-42" {
		t.Errorf("profile ID = %q, want profile-42", profileID)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := CreateToken("profile-42", "secret-a")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if _, err := ExtractProfileIDFromToken(token, "secret-b"); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	claims := gojwt.MapClaims{
		"uid": "profile-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := ExtractProfileIDFromToken(expired, "test-secret"); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestMissingProfileClaimRejected(t *testing.T) {
	claims := gojwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := ExtractProfileIDFromToken(token, "test-secret"); err == nil {
		t.Fatal("token without a uid claim must be rejected")
	}
}
