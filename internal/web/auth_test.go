package web

import (
	"testing"
	"time"
)

func TestSessionCookieRoundTrip(t *testing.T) {
	token, err := randomToken()
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}

	signed, err := signSession("test-secret", token, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := parseSession("test-secret", signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != token {
		t.Fatalf("expected %q, got %q", token, got)
	}
}

func TestParseSession_WrongSecret(t *testing.T) {
	signed, err := signSession("secret-a", "sess-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := parseSession("secret-b", signed); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseSession_Expired(t *testing.T) {
	signed, err := signSession("test-secret", "sess-1", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := parseSession("test-secret", signed); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestRandomTokensAreUnique(t *testing.T) {
	a, err := randomToken()
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	b, err := randomToken()
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	if a == b {
		t.Fatal("tokens must not repeat")
	}
}
