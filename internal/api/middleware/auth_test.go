package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/goartstore/admin-console/internal/service"
)

// mockVerifier — принимает только токен valid.
type mockVerifier struct {
	calls int
}

func (m *mockVerifier) Authenticate(_ context.Context, token string) (*service.Claims, error) {
	m.calls++
	if token != "valid" {
		return nil, service.ErrInvalidToken
	}
	return &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Email:            "user@example.com",
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newGuarded возвращает handler за EdgeGuard, запоминающий sub из контекста.
func newGuarded(v TokenVerifier, gotSubject *string) http.Handler {
	guard := NewEdgeGuard(v, testLogger(), PublicAPIPaths...)
	return guard.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestEdgeGuard_API(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		header      string
		cookie      string
		wantStatus  int
		wantSubject string
	}{
		{name: "публичный без токена", path: "/api/users/login-password", wantStatus: http.StatusOK},
		{name: "публичный со слешем", path: "/api/health/", wantStatus: http.StatusOK},
		{name: "закрытый без токена", path: "/api/users", wantStatus: http.StatusUnauthorized},
		{name: "закрытый с невалидным токеном", path: "/api/users", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "неверная схема", path: "/api/users", header: "Basic valid", wantStatus: http.StatusUnauthorized},
		{name: "Bearer", path: "/api/users", header: "Bearer valid", wantStatus: http.StatusOK, wantSubject: "user-1"},
		{name: "bearer в нижнем регистре", path: "/api/roles", header: "bearer valid", wantStatus: http.StatusOK, wantSubject: "user-1"},
		{name: "cookie", path: "/api/roles", cookie: "valid", wantStatus: http.StatusOK, wantSubject: "user-1"},
		{name: "публичный с токеном", path: "/api/users/logout", header: "Bearer valid", wantStatus: http.StatusOK, wantSubject: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := newGuarded(&mockVerifier{}, &subject)

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("HTTP %d, ожидался %d", rec.Code, tt.wantStatus)
			}
			if subject != tt.wantSubject {
				t.Errorf("sub = %q, ожидался %q", subject, tt.wantSubject)
			}
			if rec.Code == http.StatusUnauthorized {
				var env struct {
					StatusCode int `json:"statusCode"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.StatusCode != 9000 {
					t.Errorf("конверт 401: %s", rec.Body.String())
				}
			}
		})
	}
}

func TestEdgeGuard_Pages(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		cookie       string
		wantStatus   int
		wantLocation string
	}{
		{name: "защищённая без сессии", path: "/users", wantStatus: http.StatusFound, wantLocation: "/login?redirect=%2Fusers"},
		{name: "вложенная защищённая", path: "/settings/profile", wantStatus: http.StatusFound, wantLocation: "/login?redirect=%2Fsettings%2Fprofile"},
		{name: "защищённая с сессией", path: "/dashboard", cookie: "valid", wantStatus: http.StatusOK},
		{name: "просроченная сессия", path: "/dashboard", cookie: "expired", wantStatus: http.StatusFound, wantLocation: "/login?redirect=%2Fdashboard"},
		{name: "страница входа", path: "/login", wantStatus: http.StatusOK},
		{name: "незащищённая", path: "/roles", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := newGuarded(&mockVerifier{}, &subject)

			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("HTTP %d, ожидался %d", rec.Code, tt.wantStatus)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, ожидался %q", loc, tt.wantLocation)
			}
		})
	}
}

func TestEdgeGuard_NoTokenSkipsVerifier(t *testing.T) {
	v := &mockVerifier{}
	var subject string
	h := newGuarded(v, &subject)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody))
	if v.calls != 0 {
		t.Errorf("verifier вызван %d раз без токена", v.calls)
	}
}

func TestClaimsFromContext_Empty(t *testing.T) {
	if c := ClaimsFromContext(context.Background()); c != nil {
		t.Errorf("ожидался nil, получено %+v", c)
	}
	if s := SubjectFromContext(context.Background()); s != "" {
		t.Errorf("ожидалась пустая строка, получено %q", s)
	}
}
