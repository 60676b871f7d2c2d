package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plumecms/cloud/internal/auth"
)

type fakeAuthenticator struct {
	principal *auth.Principal
	err       error
	token     string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*auth.Principal, error) {
	f.token = token
	return f.principal, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func principalEcho(t *testing.T, got **auth.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionInjectsPrincipalFromCookie(t *testing.T) {
	accounts := &fakeAuthenticator{principal: &auth.Principal{UserID: "u1", Email: "a@example.com"}}

	var got *auth.Principal
	h := Session(accounts, testLogger())(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok123"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if accounts.token != "tok123" {
		t.Errorf("authenticated token = %q, want tok123", accounts.token)
	}
	if got == nil || got.UserID != "u1" {
		t.Errorf("principal = %+v, want UserID u1", got)
	}
}

func TestSessionInjectsPrincipalFromBearer(t *testing.T) {
	accounts := &fakeAuthenticator{principal: &auth.Principal{UserID: "u1"}}

	var got *auth.Principal
	h := Session(accounts, testLogger())(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces", nil)
	req.Header.Set("Authorization", "Bearer tok456")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if accounts.token != "tok456" {
		t.Errorf("authenticated token = %q, want tok456", accounts.token)
	}
	if got == nil {
		t.Error("expected principal in context")
	}
}

func TestSessionPassesThroughWithoutToken(t *testing.T) {
	accounts := &fakeAuthenticator{}

	var got *auth.Principal
	h := Session(accounts, testLogger())(principalEcho(t, &got))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if accounts.token != "" {
		t.Error("authenticator should not be called without a token")
	}
	if got != nil {
		t.Error("expected no principal in context")
	}
}

func TestSessionToleratesLookupFailure(t *testing.T) {
	accounts := &fakeAuthenticator{err: errors.New("redis down")}

	var got *auth.Principal
	h := Session(accounts, testLogger())(principalEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 pass-through", rec.Code)
	}
	if got != nil {
		t.Error("expected no principal after lookup failure")
	}
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := auth.ContextWithPrincipal(req.Context(), &auth.Principal{UserID: "u1"})
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
