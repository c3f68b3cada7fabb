package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockfolio/backend/internal/auth"
)

func authProbe(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = OwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return next, &seen
}

func TestAuthHandler(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 1)
	mw := NewAuth(tokens)

	t.Run("accepts a bearer token", func(t *testing.T) {
		token, err := tokens.Issue("user-123")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}

		next, seen := authProbe(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Handler(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if *seen != "user-123" {
			t.Errorf("Expected owner user-123 in context, got %q", *seen)
		}
	})

	t.Run("accepts the token cookie", func(t *testing.T) {
		token, err := tokens.Issue("user-123")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}

		next, seen := authProbe(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()

		mw.Handler(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if *seen != "user-123" {
			t.Errorf("Expected owner user-123 in context, got %q", *seen)
		}
	})

	t.Run("rejects a request without a token", func(t *testing.T) {
		next, _ := authProbe(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		mw.Handler(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		other := auth.NewTokenManager("other-secret", 1)
		token, err := other.Issue("user-123")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}

		next, _ := authProbe(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.Handler(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Expected status 401, got %d", rec.Code)
		}
	})

	t.Run("rejects a malformed authorization header", func(t *testing.T) {
		next, _ := authProbe(t)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.Handler(next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Expected status 401, got %d", rec.Code)
		}
	})
}
