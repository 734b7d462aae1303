// Package auth issues and verifies the bearer tokens that gate every
// websocket connection, and wraps Google sign-in verification behind a
// small interface so the HTTP layer never talks to Google directly.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no token provided")
var ErrInvalidToken = errors.New("invalid token")

// Principal is the identity resolved from a verified credential. TeamID is
// zero for admins.
type Principal struct {
	Email   string
	Name    string
	TeamID  int
	IsAdmin bool
}

type claims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	TeamID  int    `json:"teamId,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a session token for the principal, valid for ttl.
func Issue(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:   p.Email,
		Name:    p.Name,
		TeamID:  p.TeamID,
		IsAdmin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the principal it
// was issued for.
func Verify(secret, tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrNoToken
	}
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		Email:   c.Email,
		Name:    c.Name,
		TeamID:  c.TeamID,
		IsAdmin: c.IsAdmin,
	}, nil
}
