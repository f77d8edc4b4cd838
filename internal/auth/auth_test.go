package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateTokenRoundTripsThroughMiddleware(t *testing.T) {
	issuer, err := NewIssuer("top-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}

	token, err := issuer.GenerateToken("integration-account")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		if err != nil {
			t.Errorf("GetClaimsFromContext() error = %v", err)
			return
		}
		gotSubject = claims.Subject
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/boletos/extract", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	issuer.Middleware(next, "/health").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("response status = %d, want 200", rec.Code)
	}
	if gotSubject != "integration-account" {
		t.Fatalf("claims.Subject = %q, want %q", gotSubject, "integration-account")
	}
}

func TestMiddlewareRejectsMissingAuthHeader(t *testing.T) {
	issuer, _ := NewIssuer("top-secret", time.Minute)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a bearer token")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/boletos/extract", nil)
	rec := httptest.NewRecorder()
	issuer.Middleware(next, "/health").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("response status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareRejectsTokenSignedWithWrongSecret(t *testing.T) {
	issuer, _ := NewIssuer("top-secret", time.Minute)
	other, _ := NewIssuer("different-secret", time.Minute)
	token, _ := other.GenerateToken("intruder")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for a token signed with a different secret")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/boletos/extract", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	issuer.Middleware(next, "/health").ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("response status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareExemptsHealthPath(t *testing.T) {
	issuer, _ := NewIssuer("top-secret", time.Minute)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	issuer.Middleware(next, "/health").ServeHTTP(rec, req)

	if !called {
		t.Fatal("health path request did not reach the wrapped handler")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("response status = %d, want 200", rec.Code)
	}
}

func TestNewIssuerRejectsEmptySecret(t *testing.T) {
	if _, err := NewIssuer("", time.Minute); err == nil {
		t.Fatal("NewIssuer(\"\") error = nil, want an error")
	}
}

func TestNewIssuerDefaultsZeroTTLToOneHour(t *testing.T) {
	issuer, err := NewIssuer("top-secret", 0)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	if issuer.ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h default for a non-positive ttl", issuer.ttl)
	}
}
