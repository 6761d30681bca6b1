package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/citizenhub/api"
	"github.com/garnizeh/citizenhub/internal/auth"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	// GET should pass through and set headers
	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	if got := resGet.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, "GET") {
		t.Fatalf("expected Allow-Methods to include GET, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	// handler that panics
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Internal Server Error") {
		t.Fatalf("unexpected body for recovery: %s", string(b))
	}

	// normal handler should pass through
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler2 := api.RecoveryMiddleware(ok)
	w2 := httptest.NewRecorder()
	handler2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Result().StatusCode)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.RequestID(r.Context())
	})
	handler := api.RequestIDMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(api.HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "abc-123" || w.Header().Get(api.HeaderRequestID) != "abc-123" {
		t.Fatalf("expected echoed request id, ctx=%q header=%q", seen, w.Header().Get(api.HeaderRequestID))
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/id", nil))
	if seen == "" || seen == "abc-123" {
		t.Fatalf("expected generated request id, got %q", seen)
	}
	if w2.Header().Get(api.HeaderRequestID) != seen {
		t.Fatalf("header and context ids differ: %q vs %q", w2.Header().Get(api.HeaderRequestID), seen)
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("s3cr3t", time.Hour, auth.NewMemoryRevoker())
	var got auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.AuthMiddleware(tokens)(next)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "123456781234", "role": "citizen", "exp": time.Now().Add(time.Hour).Unix()})
	foreignStr, err := foreign.SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", authHeader: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{name: "ForeignKey", authHeader: "Bearer " + foreignStr, wantStatus: http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
			if !strings.Contains(w.Body.String(), `"succeeded":false`) {
				t.Fatalf("%s: expected failure envelope, got %s", c.name, w.Body.String())
			}
		})
	}

	// now test valid token
	tokStr, id, err := tokens.Issue("123456781234", auth.RoleCitizen)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
	req.Header.Set("Authorization", "Bearer "+tokStr)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("valid token: expected 200 got %d", w.Result().StatusCode)
	}
	if got.Subject != "123456781234" || got.Role != auth.RoleCitizen || got.TokenID != id.TokenID {
		t.Fatalf("unexpected identity in context: %+v", got)
	}

	// revoked tokens are rejected
	if err := tokens.Revoke(req.Context(), id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401 got %d", w.Result().StatusCode)
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := api.RequireRole(auth.RoleAdmin)(next)

	cases := []struct {
		name       string
		identity   *auth.Identity
		wantStatus int
	}{
		{name: "NoIdentity", wantStatus: http.StatusUnauthorized},
		{name: "WrongRole", identity: &auth.Identity{Subject: "123456781234", Role: auth.RoleCitizen}, wantStatus: http.StatusForbidden},
		{name: "Admin", identity: &auth.Identity{Subject: "a@gov.in", Role: auth.RoleAdmin}, wantStatus: http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if c.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *c.identity))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Result().StatusCode != c.wantStatus {
				t.Fatalf("%s: want %d got %d", c.name, c.wantStatus, w.Result().StatusCode)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("s3cr3t", time.Hour, auth.NewMemoryRevoker())
	var hasIdentity bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasIdentity = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := api.OptionalAuthMiddleware(tokens)(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/apply", nil))
	if w.Result().StatusCode != http.StatusOK || hasIdentity {
		t.Fatalf("anonymous: want 200 without identity, got %d identity=%v", w.Result().StatusCode, hasIdentity)
	}

	req := httptest.NewRequest(http.MethodPost, "/apply", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: want 401 got %d", w.Result().StatusCode)
	}

	tok, _, err := tokens.Issue("123456781234", auth.RoleCitizen)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/apply", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK || !hasIdentity {
		t.Fatalf("valid token: want 200 with identity, got %d identity=%v", w.Result().StatusCode, hasIdentity)
	}
}

// unreachableRevoker fails every lookup like a revocation store that is down.
type unreachableRevoker struct{}

func (unreachableRevoker) Revoke(context.Context, string, time.Time) error {
	return errors.New("dial tcp 10.0.0.5:6379: connection refused")
}

func (unreachableRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("dial tcp 10.0.0.5:6379: connection refused")
}

func TestAuthMiddlewareRevocationStoreDown(t *testing.T) {
	tokens := auth.NewTokens("s3cr3t", time.Hour, unreachableRevoker{})
	called := false
	handler := api.AuthMiddleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tokStr, _, err := tokens.Issue("123456781234", auth.RoleCitizen)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/jwt", nil)
	req.Header.Set("Authorization", "Bearer "+tokStr)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	if called {
		t.Fatalf("request passed through without a revocation check")
	}
	if !strings.Contains(w.Body.String(), "Internal Server Error") || strings.Contains(w.Body.String(), "6379") {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	// a bad token is still a 401 whatever the store does
	req.Header.Set("Authorization", "Bearer bad.token.here")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401 got %d", w.Code)
	}
}
