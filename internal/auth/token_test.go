package auth

import (
	"strings"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if subject != "user-123" {
		t.Errorf("Expected subject user-123, got %s", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 1)
	verifier := NewTokenManager("secret-b", 1)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Expected verification to fail with a different secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -1)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Error("Expected verification to fail for an expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	for _, token := range []string{"", "not-a-token", strings.Repeat("a", 64)} {
		if _, err := m.Verify(token); err == nil {
			t.Errorf("Expected verification to fail for %q", token)
		}
	}
}
