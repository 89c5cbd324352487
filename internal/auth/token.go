// Package auth extracts identity claims from access tokens issued by the
// hosted backend. The backend verifies tokens on every request; this side only
// needs the subject to scope relationship lookups, so parsing is unverified.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSubject = errors.New("token has no subject claim")

// UserID returns the sub claim of the given JWT without verifying the
// signature. An empty token yields ErrNoSubject.
func UserID(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoSubject
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}
