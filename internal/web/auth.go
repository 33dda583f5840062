package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie is the browser cookie carrying the signed session claim.
	SessionCookie = "skillence_session"

	loginTokenTTL = 15 * time.Minute
	sessionTTL    = 24 * time.Hour
)

// sessionClaims is the JWT payload stored in the session cookie. SID refers
// to the server-side session row; the cookie alone grants nothing once that
// row is gone.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// randomToken returns a 32-byte cryptographically random hex token.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// signSession wraps a session token in a signed JWT.
func signSession(secret, sessionToken string, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		SID: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// parseSession extracts the session token from a signed cookie value.
func parseSession(secret, cookieValue string) (string, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	_, err := parser.ParseWithClaims(cookieValue, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session cookie: %w", err)
	}
	if claims.SID == "" {
		return "", fmt.Errorf("session cookie has no session id")
	}
	return claims.SID, nil
}
