package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails decoding, signature
// verification, or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// issuer identifies tokens minted by this service.
const issuer = "todo-api"

// Claims is the JWT claim set for an access token. The subject carries the
// user ID.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access tokens with a process-wide symmetric
// secret. It is immutable after construction and safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager with the given secret and default
// token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate creates a signed HS256 access token for the given subject using
// the configured default lifetime.
func (m *TokenManager) Generate(subject string) (string, error) {
	return m.GenerateWithTTL(subject, m.ttl)
}

// GenerateWithTTL creates a signed HS256 access token with an explicit lifetime.
func (m *TokenManager) GenerateWithTTL(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti keeps tokens minted in the same second distinct,
			// so revoking one session never revokes another.
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// Validate parses the token and checks signature, signing method, and expiry.
// Any failure is reported as ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}

	return claims, nil
}

// PeekExpiry returns the token's expiry without enforcing it. The signature
// is still verified, so only tokens this server minted can be peeked. Logout
// uses this to blacklist a token through its remaining natural lifetime; it
// must never substitute for Validate anywhere else.
func (m *TokenManager) PeekExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, m.keyFunc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: token has no expiry", ErrInvalidToken)
	}

	return claims.ExpiresAt.Time, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}
