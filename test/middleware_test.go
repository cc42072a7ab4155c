package test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	authcore "github.com/FrancescoMain/korsvagen-web-sub000"
	"github.com/FrancescoMain/korsvagen-web-sub000/middleware"
)

func TestRequireAuthMiddleware(t *testing.T) {
	engine, _ := newEngine(t, nil)

	pair, err := engine.IssuePair("u1", "admin@korsvagen.it", "admin")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	var seen *authcore.Claims
	handler := middleware.RequireAuth(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// Valid token passes and claims land in the request context.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rr.Code)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Fatalf("claims in context = %+v, want UserID u1", seen)
	}

	// No header, garbage token, and a revoked token are all 401.
	for name, header := range map[string]string{
		"missing header": "",
		"garbage token":  "Bearer not-a-token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, rr.Code)
		}
	}

	engine.Revoke(clientCtx("10.0.0.1"), pair.AccessToken)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: status = %d, want 401", rr.Code)
	}
}

func TestCSRFMiddleware(t *testing.T) {
	engine, _ := newEngine(t, nil)

	token, err := engine.GenerateCSRF()
	if err != nil {
		t.Fatalf("generate csrf: %v", err)
	}

	handler := middleware.CSRF(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Safe methods pass without any token.
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("GET status = %d, want 204", rr.Code)
	}

	// State-changing request with matching cookie and header passes.
	req = httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFCookie, Value: token})
	req.Header.Set(middleware.CSRFHeader, token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("POST with token: status = %d, want 204", rr.Code)
	}

	// Missing header, missing cookie, and a mismatch are all 403.
	other, _ := engine.GenerateCSRF()
	cases := []struct {
		name           string
		cookie, header string
	}{
		{"missing header", token, ""},
		{"missing cookie", "", token},
		{"mismatch", token, other},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/resource", nil)
		if tc.cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.CSRFCookie, Value: tc.cookie})
		}
		if tc.header != "" {
			req.Header.Set(middleware.CSRFHeader, tc.header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s: status = %d, want 403", tc.name, rr.Code)
		}
	}
}

func TestMiddlewareFailsClosedWithoutEngine(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name    string
		handler http.Handler
		method  string
		want    int
	}{
		{"require auth", middleware.RequireAuth(nil)(next), http.MethodGet, http.StatusUnauthorized},
		{"csrf", middleware.CSRF(nil)(next), http.MethodPost, http.StatusForbidden},
		{"rate limit", middleware.RateLimit(nil)(next), http.MethodGet, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/resource", nil)
		if tc.method == http.MethodPost {
			req.Header.Set(middleware.CSRFHeader, "x")
			req.AddCookie(&http.Cookie{Name: middleware.CSRFCookie, Value: "x"})
		}
		rr := httptest.NewRecorder()
		tc.handler.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rr.Code, tc.want)
		}
	}

	// Safe methods still pass through the CSRF middleware untouched.
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	rr := httptest.NewRecorder()
	middleware.CSRF(nil)(next).ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("safe method through nil-engine csrf: status = %d, want 204", rr.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	engine, _ := newEngine(t, func(cfg *authcore.Config) {
		cfg.RateLimit.GeneralMaxRequests = 3
		cfg.RateLimit.AuthMaxRequests = 3
	})

	handler := middleware.RateLimit(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		if code := send("192.0.2.1:50000"); code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d, want 204", i+1, code)
		}
	}
	if code := send("192.0.2.1:50000"); code != http.StatusTooManyRequests {
		t.Fatalf("over budget: status = %d, want 429", code)
	}

	// The budget is per source IP.
	if code := send("192.0.2.2:50000"); code != http.StatusNoContent {
		t.Fatalf("other IP: status = %d, want 204", code)
	}
}
