package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// Действия кнопочных прав, которыми закрыты изменяющие endpoints.
const (
	actionCreate = "create"
	actionUpdate = "update"
	actionDelete = "delete"
)

// Ресурсы прав.
const (
	resourceUsers       = "users"
	resourceRoles       = "roles"
	resourcePermissions = "permissions"
)

// requirePermission пропускает запрос, только если у вызывающего есть
// право action:resource. Иначе — HTTP 200 с кодом 9003.
func (h *APIHandler) requirePermission(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerID := middleware.SubjectFromContext(r.Context())
			ok, err := h.users.HasPermission(r.Context(), callerID, action, resource)
			if err != nil {
				h.writeServiceError(w, r, err)
				return
			}
			if !ok {
				h.logger.Warn("Недостаточно прав",
					slog.String("user_id", callerID),
					slog.String("permission", action+":"+resource),
					slog.String("path", r.URL.Path),
				)
				apierrors.Business(w, request.CodeInsufficientPermission, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
