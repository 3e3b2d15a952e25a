package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when no credential was supplied at all.
	ErrTokenMissing = errors.New("authentication token missing")
	// ErrTokenInvalid is returned when the signature or claims are bad.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrMissingSecret is returned at construction time when no signing
	// secret is configured. Accepting unsigned tokens is never an option.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
)

// Claims carries the numeric user identity inside a signed token.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens and extracts the user identity.
// It is stateless and safe for concurrent use.
type Verifier struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewVerifier builds a Verifier. It fails fast when the secret is empty
// so a misconfigured process never admits a single connection.
func NewVerifier(secret string, tokenTTL time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if tokenTTL <= 0 {
		tokenTTL = 48 * time.Hour
	}
	return &Verifier{secret: []byte(secret), tokenTTL: tokenTTL}, nil
}

// Sign issues a token for the given user, used by the login/register flow.
func (v *Verifier) Sign(userID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// TokenTTL reports how long issued tokens stay valid.
func (v *Verifier) TokenTTL() time.Duration {
	return v.tokenTTL
}

// Verify checks the credential and returns the embedded user identity.
// The distinct failure kinds matter for logging; callers treat them all
// as unauthenticated.
func (v *Verifier) Verify(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}

// TokenFromRequest pulls a credential from an HTTP request, in source
// order: the "token" query parameter (the connection-time auxiliary
// field used by socket clients), the Authorization header as
// "Bearer <token>", the legacy "jwt=<token>" header form kept for older
// clients, and finally the "jwt" cookie set by the login flow.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if token := TokenFromHeader(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookie, err := r.Cookie("jwt"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// TokenFromHeader extracts a credential from an Authorization header
// value, accepting both the standard Bearer form and the legacy jwt= form.
func TokenFromHeader(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if strings.HasPrefix(header, "jwt=") {
		return strings.TrimPrefix(header, "jwt=")
	}
	return ""
}
