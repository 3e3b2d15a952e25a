package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestSignAndVerify(t *testing.T) {
	v := newTestVerifier(t)

	token, err := v.Sign(42)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	userID, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	v := newTestVerifier(t)
	if _, err := v.Verify(""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := newTestVerifier(t)

	claims := Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := newTestVerifier(t)

	other, err := NewVerifier("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	token, err := other.Sign(42)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsNonPositiveIdentity(t *testing.T) {
	v := newTestVerifier(t)

	claims := Claims{
		UserID: 0,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc123", "abc123"},
		{"legacy jwt form", "jwt=abc123", "abc123"},
		{"empty", "", ""},
		{"unknown scheme", "Basic abc123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenFromHeader(tt.header); got != tt.want {
				t.Errorf("TokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestTokenFromRequestSourceOrder(t *testing.T) {
	// Query parameter wins over header and cookie.
	r := httptest.NewRequest("GET", "/socket?token=from-query", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.Header.Set("Cookie", "jwt=from-cookie")
	if got := TokenFromRequest(r); got != "from-query" {
		t.Errorf("token = %q, want from-query", got)
	}

	// Header wins over cookie.
	r = httptest.NewRequest("GET", "/socket", nil)
	r.Header.Set("Authorization", "Bearer from-header")
	r.Header.Set("Cookie", "jwt=from-cookie")
	if got := TokenFromRequest(r); got != "from-header" {
		t.Errorf("token = %q, want from-header", got)
	}

	// Cookie is the last fallback.
	r = httptest.NewRequest("GET", "/socket", nil)
	r.Header.Set("Cookie", "jwt=from-cookie")
	if got := TokenFromRequest(r); got != "from-cookie" {
		t.Errorf("token = %q, want from-cookie", got)
	}

	r = httptest.NewRequest("GET", "/socket", nil)
	if got := TokenFromRequest(r); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}
