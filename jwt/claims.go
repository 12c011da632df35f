package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed is returned when the token is not a three-segment JWT with a JSON payload.
	ErrMalformed = errors.New("jwt: malformed token")
	// ErrNoExpiry is returned when the payload carries no exp claim.
	ErrNoExpiry = errors.New("jwt: token has no expiry")
)

// Claims is the payload carried by console access tokens.
type Claims struct {
	UserID   int64  `json:"uid,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// DecodeExpiry returns the exp claim of token without verifying its signature.
func DecodeExpiry(token string) (time.Time, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, ErrMalformed
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, ErrMalformed
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
