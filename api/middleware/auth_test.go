package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/shopadmin/pkg/auth"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubSessionChecker struct {
	ok  bool
	err error
}

func (s stubSessionChecker) IsOpen(context.Context, int64) (bool, error) {
	return s.ok, s.err
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}

func mintTestToken(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: 7, Role: role, SessionID: 42})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionChecker{ok: true}, nil)(okHandler())

	resp := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var body types.ErrorEnvelope
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Errors) != 1 || body.Errors[0] != "Authentication required" {
		t.Fatalf("unexpected errors %v", body.Errors)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, stubSessionChecker{ok: true}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	if resp := serve(handler, req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsClosedSession(t *testing.T) {
	handler := Auth(testJWT, stubSessionChecker{ok: false}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, auth.RoleAdmin))
	if resp := serve(handler, req); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSessionLookupFailure(t *testing.T) {
	handler := Auth(testJWT, stubSessionChecker{err: errors.New("db down")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, auth.RoleAdmin))
	if resp := serve(handler, req); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	var captured auth.Actor
	handler := Auth(testJWT, stubSessionChecker{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, auth.RoleCashier))
	if resp := serve(handler, req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.UserID != 7 || captured.SessionID != 42 || captured.Role != auth.RoleCashier {
		t.Fatalf("unexpected actor %+v", captured)
	}
}

func TestRequireAdmin(t *testing.T) {
	chain := func() http.Handler {
		return Auth(testJWT, stubSessionChecker{ok: true}, nil)(RequireAdmin(nil)(okHandler()))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, auth.RoleCashier))
	if resp := serve(chain(), req); resp.Code != http.StatusForbidden {
		t.Fatalf("cashier: expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, auth.RoleAdmin))
	if resp := serve(chain(), req); resp.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", resp.Code)
	}

	if resp := serve(RequireAdmin(nil)(okHandler()), httptest.NewRequest(http.MethodGet, "/", nil)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("no actor: expected 401 got %d", resp.Code)
	}
}

func TestRequestIDEchoesOrAssigns(t *testing.T) {
	handler := RequestID(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	if got := serve(handler, req).Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected echoed id got %q", got)
	}

	if got := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get("X-Request-ID"); got == "" {
		t.Fatalf("expected generated id")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\twith spaces")
	if got := serve(handler, req).Header().Get("X-Request-ID"); got == "bad id\twith spaces" || got == "" {
		t.Fatalf("expected unusable id to be replaced, got %q", got)
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	if resp := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil)); resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	handler := LoginRateLimit(2, time.Minute, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/Account/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		if resp := serve(handler, req); resp.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 got %d", i, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/Account/login", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	if resp := serve(handler, req); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/Account/login", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	if resp := serve(handler, req); resp.Code != http.StatusOK {
		t.Fatalf("other client: expected 200 got %d", resp.Code)
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	handler := LoginRateLimit(0, time.Minute, nil)(okHandler())
	for i := 0; i < 5; i++ {
		if resp := serve(handler, httptest.NewRequest(http.MethodPost, "/", nil)); resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
}

func TestSecureSetsHeaders(t *testing.T) {
	resp := serve(Secure(false)(okHandler()), httptest.NewRequest(http.MethodGet, "/", nil))
	if got := resp.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY got %q", got)
	}
	if got := resp.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff got %q", got)
	}
}

func TestMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	handler := metrics.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	serve(handler, httptest.NewRequest(http.MethodPost, "/api/Categories", nil))

	if got := testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodPost, "unmatched", "201")); got != 1 {
		t.Fatalf("expected 1 request got %v", got)
	}
}
