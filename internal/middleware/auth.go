// Package middleware provides request-scoped plumbing shared by the HTTP
// server: structured logging, token handling, rate limits, tracing and metrics.
package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenIssuer   = "recipebox-api"
	TokenAudience = "recipebox-client"
)

var (
	ErrMissingToken   = errors.New("authorization required")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrInvalidIssuer  = errors.New("invalid token issuer")
	ErrInvalidSubject = errors.New("invalid user ID in token")
)

// TokenClaims is the verified subset of a bearer token.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMissingToken
	}
	return parts[1], nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": TokenIssuer,
		"aud": TokenAudience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": newJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func newJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

// ParseToken verifies signature, expiry, issuer and audience, and returns the
// claims the server relies on.
func ParseToken(secret, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if issuer, _ := claims["iss"].(string); issuer != TokenIssuer {
		return nil, ErrInvalidIssuer
	}
	if audience, _ := claims["aud"].(string); audience != TokenAudience {
		return nil, ErrInvalidIssuer
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidSubject
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidSubject
	}

	out := &TokenClaims{UserID: uint(userID)}
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
