package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "valid bearer token", header: "Bearer abc123", expected: "abc123"},
		{name: "bearer with extra spaces", header: "Bearer   token-with-spaces   ", expected: "token-with-spaces"},
		{name: "lowercase bearer", header: "bearer token123", expected: "token123"},
		{name: "empty header", header: "", expected: ""},
		{name: "no bearer prefix", header: "token123", expected: ""},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			result := extractBearerToken(req)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if GetAuthContext(context.Background()) != nil {
		t.Error("expected nil for context without auth")
	}

	authCtx := &domain.AuthContext{Subject: "agent"}
	ctx := context.WithValue(context.Background(), authContextKey, authCtx)
	if got := GetAuthContext(ctx); got != authCtx {
		t.Errorf("expected stored auth context, got %v", got)
	}
}

func TestAuthenticate(t *testing.T) {
	auth := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			switch token {
			case "good":
				return &domain.AuthContext{Subject: "agent"}, nil
			case "old":
				return nil, domain.ErrTokenExpired
			default:
				return nil, domain.ErrTokenInvalid
			}
		},
	}
	mw := NewAuthMiddleware(auth)

	var seen *domain.AuthContext
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "missing token", header: "", wantStatus: http.StatusUnauthorized, wantError: "missing authorization token"},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized, wantError: "invalid token"},
		{name: "expired token", header: "Bearer old", wantStatus: http.StatusUnauthorized, wantError: "token expired"},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec).Error; got != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, got)
				}
				return
			}
			if seen == nil || seen.Subject != "agent" {
				t.Errorf("expected auth context for agent, got %v", seen)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	tests := []struct {
		name       string
		authCtx    *domain.AuthContext
		wantStatus int
	}{
		{name: "no auth context", authCtx: nil, wantStatus: http.StatusUnauthorized},
		{name: "unrestricted caller", authCtx: &domain.AuthContext{Subject: "agent"}, wantStatus: http.StatusOK},
		{name: "granted", authCtx: &domain.AuthContext{Subject: "agent", Scopes: []string{"publish"}}, wantStatus: http.StatusOK},
		{name: "not granted", authCtx: &domain.AuthContext{Subject: "agent", Scopes: []string{"drafts"}}, wantStatus: http.StatusForbidden},
	}

	handler := RequireScope(domain.ScopePublish)(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/post", nil)
			if tt.authCtx != nil {
				req = req.WithContext(context.WithValue(req.Context(), authContextKey, tt.authCtx))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestScopeEnforcedOnRoutes(t *testing.T) {
	auth := &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			return &domain.AuthContext{Subject: "drafts-only", Scopes: []string{domain.ScopeDrafts}}, nil
		},
	}
	s := NewServer(DefaultConfig(), Services{
		Auth:       auth,
		OAuth:      &mockOAuthService{},
		Publish:    &mockPublishService{},
		Drafts:     &mockDraftService{},
		Identities: &mockIdentityService{},
	}, Infra{}, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/post?user_id=42&text=hi", nil)
	req.Header.Set("Authorization", "Bearer any")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for publish without scope, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	mw := NewRecoveryMiddleware(discardLogger())
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	mw := NewLoggingMiddleware(discardLogger())
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("rejects over burst", func(t *testing.T) {
		rl := NewRateLimiter(1, 2, ClientIP, discardLogger())
		handler := rl.Middleware(okHandler())

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest(http.MethodGet, "/callback", nil)
			req.RemoteAddr = "10.0.0.1:5555"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
			if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") != "1" {
				t.Errorf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
			}
		}

		want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
		for i := range want {
			if codes[i] != want[i] {
				t.Errorf("request %d: expected %d, got %d", i, want[i], codes[i])
			}
		}
	})

	t.Run("buckets are per key", func(t *testing.T) {
		rl := NewRateLimiter(1, 1, ClientIP, discardLogger())
		handler := rl.Middleware(okHandler())

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", addr, rec.Code)
			}
		}
		if rl.Len() != 2 {
			t.Errorf("expected 2 tracked keys, got %d", rl.Len())
		}
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		rl := NewRateLimiter(0, 1, ClientIP, discardLogger())
		handler := rl.Middleware(okHandler())

		for range 5 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		}
	})

	t.Run("idle keys are dropped", func(t *testing.T) {
		now := time.Now()
		rl := NewRateLimiter(1, 1, ClientIP, discardLogger())
		rl.now = func() time.Time { return now }

		rl.get("a")
		now = now.Add(limiterIdleTTL + time.Minute)
		rl.get("b")

		if rl.Len() != 1 {
			t.Errorf("expected idle key to be dropped, tracking %d", rl.Len())
		}
	})

	t.Run("caller subject key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:80"
		if got := CallerSubject(req); got != "10.0.0.9" {
			t.Errorf("expected IP fallback, got %q", got)
		}

		req = req.WithContext(context.WithValue(req.Context(), authContextKey, &domain.AuthContext{Subject: "agent"}))
		if got := CallerSubject(req); got != "sub:agent" {
			t.Errorf("expected subject key, got %q", got)
		}
	})
}
