// Package auth provides session-token issuance/verification, password
// hashing, and the HTTP middleware that gates authenticated routes.
//
// Sessions are stateless JWTs: the signed token carries the user ID in the
// "sub" claim plus an expiry, so verification needs no database lookup. The
// token travels in an HttpOnly cookie set at login/register and cleared at
// logout.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arefin/flowboard/internal/apperror"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

const issuer = "flowboard"

// TokenService signs and verifies session tokens with an HMAC secret.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and the
// default 7-day session lifetime. The secret should be at least 32 bytes of
// random data in production; anything under 16 is rejected outright.
func NewTokenService(secret string) (*TokenService, error) {
	return NewTokenServiceWithTTL(secret, DefaultSessionTTL)
}

// NewTokenServiceWithTTL creates a TokenService with a custom session
// lifetime. Used by tests and by deployments that override SESSION_TTL.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: session TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured session lifetime. Handlers use it to set the
// cookie Max-Age so cookie and token expire together.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given userID,
// expiring after the configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Exposed for tests that need already-expired or short-lived tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the userID it
// encodes. It fails closed: bad signature, wrong algorithm, wrong issuer,
// missing expiry, and expired tokens all return apperror.ErrUnauthorized.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.Unauthorized("session expired")
		}
		return "", apperror.Unauthorized("invalid session token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.Unauthorized("invalid session token")
	}

	if c.Subject == "" {
		return "", apperror.Unauthorized("invalid session token")
	}

	return c.Subject, nil
}
