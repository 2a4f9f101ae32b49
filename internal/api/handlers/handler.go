// handler.go — основной обработчик dev API.
// Объединяет health и бизнес-обработчики, переводит ошибки сервисного
// слоя в прикладные коды конверта {statusCode, message, data}.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/service"
	"github.com/bigkaa/goartstore/admin-console/internal/validation"
)

// maxBodySize — ограничение тела запроса.
const maxBodySize = 1 << 20

// APIHandler — основной обработчик API.
type APIHandler struct {
	health      *HealthHandler
	auth        *service.AuthService
	tokens      *service.TokenService
	users       *service.UserService
	roles       *service.RoleService
	permissions *service.PermissionService
	logger      *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *service.AuthService,
	tokens *service.TokenService,
	users *service.UserService,
	roles *service.RoleService,
	permissions *service.PermissionService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:      health,
		auth:        auth,
		tokens:      tokens,
		users:       users,
		roles:       roles,
		permissions: permissions,
		logger:      logger.With(slog.String("component", "api_handler")),
	}
}

// serviceCodes — соответствие ошибок сервиса прикладным кодам.
var serviceCodes = []struct {
	err  error
	code request.BusinessCode
}{
	{service.ErrNotFound, request.CodeDataNotFound},
	{service.ErrConflict, request.CodeResourceExists},
	{service.ErrInvalidParameter, request.CodeInvalidParameter},
	{service.ErrEmailExists, request.CodeEmailExists},
	{service.ErrInvalidCode, request.CodeInvalidVerificationCode},
	{service.ErrInvalidCredentials, request.CodeInvalidCredentials},
	{service.ErrKeyExpired, request.CodeKeyExpired},
	{service.ErrDecryption, request.CodeDecryptionFailed},
	{service.ErrAccountDisabled, request.CodeAccountDisabled},
	{service.ErrSystemRole, request.CodeBusinessRuleViolation},
	{service.ErrForbidden, request.CodeInsufficientPermission},
}

// writeServiceError отдаёт прикладной код для известных ошибок
// и 500 для остальных.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidToken) {
		apierrors.Unauthorized(w, err.Error())
		return
	}
	for _, sc := range serviceCodes {
		if errors.Is(err, sc.err) {
			apierrors.Business(w, sc.code, "")
			return
		}
	}

	h.logger.Error("Внутренняя ошибка",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	apierrors.InternalError(w, "服务器内部错误")
}

// respond — OK при err == nil, иначе writeServiceError.
func (h *APIHandler) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if data == nil {
		data = struct{}{}
	}
	apierrors.OK(w, data)
}

// decode читает JSON-тело и проверяет теги validate.
// При ошибке ответ уже записан и возвращается false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := io.LimitReader(r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		apierrors.InvalidParameter(w, "请求体不是有效的JSON")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		apierrors.InvalidParameter(w, err.Error())
		return false
	}
	return true
}

// requireQuery возвращает обязательный query-параметр.
// Разбор — как в сгенерированных oapi-codegen обёртках (style=form, explode).
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindQueryParameter("form", true, true, name, r.URL.Query(), &v)
	v = strings.TrimSpace(v)
	if err != nil || v == "" {
		apierrors.InvalidParameter(w, "缺少参数 "+name)
		return "", false
	}
	return v, true
}

// bindOptional привязывает необязательные параметры; dst — указатели на *T.
// При ошибке разбора ответ уже записан и возвращается false.
func bindOptional(w http.ResponseWriter, r *http.Request, dst map[string]any) bool {
	q := r.URL.Query()
	for name, d := range dst {
		if err := runtime.BindQueryParameter("form", true, false, name, q, d); err != nil {
			apierrors.InvalidParameter(w, "参数 "+name+" 格式错误")
			return false
		}
	}
	return true
}

// optionalQuery — необязательный строковый параметр без пробелов по краям.
func optionalQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v *string
	if !bindOptional(w, r, map[string]any{name: &v}) {
		return "", false
	}
	if v == nil {
		return "", true
	}
	return strings.TrimSpace(*v), true
}

// listQuery разбирает page, limit, search, sortBy, sortOrder.
func listQuery(w http.ResponseWriter, r *http.Request) (service.ListQuery, bool) {
	var (
		page, limit               *int
		search, sortBy, sortOrder *string
	)
	ok := bindOptional(w, r, map[string]any{
		"page":      &page,
		"limit":     &limit,
		"search":    &search,
		"sortBy":    &sortBy,
		"sortOrder": &sortOrder,
	})
	if !ok {
		return service.ListQuery{}, false
	}
	return service.ListQuery{
		Page:      valueOf(page),
		Limit:     valueOf(limit),
		Search:    strings.TrimSpace(valueOf(search)),
		SortBy:    valueOf(sortBy),
		SortOrder: valueOf(sortOrder),
	}.Normalize(), true
}

// valueOf — значение указателя или нулевое значение.
func valueOf[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// clientIP — адрес клиента без порта.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
