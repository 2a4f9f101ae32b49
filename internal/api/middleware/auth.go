// auth.go — middleware проверки сессии на границе dev API.
// Токен берётся из заголовка Authorization (Bearer) или cookie accessToken
// и проверяется по собственным ключам подписи (RS256).
// Закрытые /api/* без токена получают 401 со statusCode 9000,
// защищённые страницы перенаправляются на /login?redirect=<path>.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/service"
	"github.com/bigkaa/goartstore/admin-console/internal/session"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyClaims — claims проверенного токена в контексте запроса.
	ContextKeyClaims contextKey = "jwt_claims"

	// AccessTokenCookie — cookie с access token для проверки страниц.
	AccessTokenCookie = "accessToken"

	apiPrefix = "/api/"
)

// PublicAPIPaths — endpoints, доступные без токена.
var PublicAPIPaths = []string{
	"/api/health",
	"/api/users/register",
	"/api/users/login",
	"/api/users/login-password",
	"/api/users/send-email-code",
	"/api/users/send-login-code",
	"/api/users/encryption-key",
	"/api/users/refresh-token",
}

// AuthClaims — claims проверенного access token.
type AuthClaims struct {
	// Subject — ID пользователя.
	Subject string
	// Email — email пользователя.
	Email string
}

// TokenVerifier проверяет access token.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*service.Claims, error)
}

// EdgeGuard — проверка сессии для API и страниц.
type EdgeGuard struct {
	verifier TokenVerifier
	public   map[string]bool
	logger   *slog.Logger
}

// NewEdgeGuard создаёт middleware проверки сессии.
// publicPaths — точные пути /api/*, не требующие токена.
func NewEdgeGuard(verifier TokenVerifier, logger *slog.Logger, publicPaths ...string) *EdgeGuard {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}
	return &EdgeGuard{
		verifier: verifier,
		public:   public,
		logger:   logger.With(slog.String("component", "edge_guard")),
	}
}

// Middleware возвращает HTTP middleware проверки сессии.
// Валидный токен кладётся в контекст и для публичных путей.
func (g *EdgeGuard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := g.authenticate(r)
			if claims != nil {
				noteUser(r.Context(), claims.Subject)
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyClaims, claims))
			}

			path := r.URL.Path
			if strings.HasPrefix(path, apiPrefix) {
				if claims == nil && !g.public[strings.TrimSuffix(path, "/")] {
					apierrors.Unauthorized(w, request.CodeMissingToken.Message())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if redirect, allowed := session.CheckRoute(path, claims != nil); !allowed {
				http.Redirect(w, r, redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate возвращает claims валидного токена или nil.
func (g *EdgeGuard) authenticate(r *http.Request) *AuthClaims {
	token := tokenFromRequest(r)
	if token == "" {
		return nil
	}
	c, err := g.verifier.Authenticate(r.Context(), token)
	if err != nil {
		g.logger.Debug("Токен отклонён",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr),
		)
		return nil
	}
	return &AuthClaims{Subject: c.Subject, Email: c.Email}
}

// tokenFromRequest извлекает Bearer token, затем cookie accessToken.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// SubjectFromContext извлекает sub из контекста запроса.
// Возвращает пустую строку, если claims не найдены.
func SubjectFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}
