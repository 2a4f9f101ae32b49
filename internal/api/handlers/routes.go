package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/api/openapi"
)

// Register регистрирует все маршруты dev API и служебные endpoints.
func (h *APIHandler) Register(r chi.Router) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)
	r.Get("/.well-known/jwks.json", h.JWKS)
	r.Get("/openapi.yaml", OpenAPIDocument)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health.APIHealth)

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.RegisterUser)
			r.Post("/login", h.LoginWithCode)
			r.Post("/login-password", h.LoginWithPassword)
			r.Post("/logout", h.Logout)
			r.Post("/refresh-token", h.RefreshToken)
			r.Get("/encryption-key", h.EncryptionKey)
			r.Post("/send-email-code", h.SendEmailCode)
			r.Post("/send-login-code", h.SendLoginCode)

			r.Get("/", h.ListUsers)
			r.With(h.requirePermission(actionCreate, resourceUsers)).Post("/", h.CreateUser)
			r.With(h.requirePermission(actionDelete, resourceUsers)).Delete("/", h.DeleteUsers)
			r.Get("/me", h.CurrentUser)
			r.With(h.requirePermission(actionUpdate, resourceUsers)).Put("/status", h.ToggleUserStatus)
			r.With(h.requirePermission(actionUpdate, resourceUsers)).Post("/assign-role", h.AssignRole)
			r.With(h.requirePermission(actionUpdate, resourceUsers)).Post("/assign-roles-batch", h.AssignRoles)
			r.With(h.requirePermission(actionUpdate, resourceUsers)).Delete("/remove-role", h.RemoveRole)
			r.Get("/roles", h.UserRoles)
			r.Get("/permissions", h.UserPermissions)
			r.Get("/check-permission", h.CheckPermission)
			r.Get("/check-role", h.CheckRole)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.With(h.requirePermission(actionCreate, resourceRoles)).Post("/", h.CreateRole)
			r.With(h.requirePermission(actionUpdate, resourceRoles)).Put("/", h.UpdateRole)
			r.With(h.requirePermission(actionDelete, resourceRoles)).Delete("/", h.DeleteRole)
			r.Get("/detail", h.RoleDetail)
			r.Get("/by-code", h.RoleByCode)
			r.With(h.requirePermission(actionUpdate, resourceRoles)).Post("/assign-permissions", h.AssignPermissions)
			r.Get("/permissions", h.RolePermissions)
			r.With(h.requirePermission(actionUpdate, resourceRoles)).Delete("/remove-permission", h.RemovePermission)
		})

		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", h.ListPermissions)
			r.With(h.requirePermission(actionCreate, resourcePermissions)).Post("/", h.CreatePermission)
			r.With(h.requirePermission(actionUpdate, resourcePermissions)).Put("/", h.UpdatePermission)
			r.With(h.requirePermission(actionDelete, resourcePermissions)).Delete("/", h.DeletePermission)
			r.Get("/search", h.SearchPermissions)
			r.Get("/actions", h.PermissionActions)
			r.Get("/resources", h.PermissionResources)
			r.Get("/by-action", h.PermissionsByAction)
			r.Get("/by-resource", h.PermissionsByResource)
			r.Get("/detail", h.PermissionDetail)
			r.Get("/tree", h.PermissionTree)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			apierrors.NotFound(w, "接口不存在")
		})
	})

	r.NotFound(Page)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.MethodNotAllowed(w, "请求方法不允许")
	})
}

// OpenAPIDocument отдаёт контракт dev API.
func OpenAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapi.Raw())
}

// Page — заглушка страниц консоли. Сами страницы отрисовывает TUI,
// dev API лишь подтверждает, что проверка сессии пройдена.
func Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		apierrors.MethodNotAllowed(w, "请求方法不允许")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "<!doctype html><title>Admin Console</title><p>%s</p>\n",
		html.EscapeString(r.URL.Path))
}
