package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestUserID(t *testing.T) {
	t.Run("extracts sub", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "user-123"})
		got, err := UserID(token)
		if err != nil {
			t.Fatalf("UserID() error = %v", err)
		}
		if got != "user-123" {
			t.Errorf("UserID() = %q, want user-123", got)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if _, err := UserID("  "); !errors.Is(err, ErrNoSubject) {
			t.Errorf("UserID() error = %v, want %v", err, ErrNoSubject)
		}
	})

	t.Run("token without sub", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"role": "authenticated"})
		if _, err := UserID(token); !errors.Is(err, ErrNoSubject) {
			t.Errorf("UserID() error = %v, want %v", err, ErrNoSubject)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := UserID("not-a-jwt"); err == nil {
			t.Error("UserID() = nil error for garbage token")
		}
	})
}
