// openapi.go — проверка запросов dev API по openapi.yaml.
// Запрос, не соответствующий контракту (нет обязательного параметра,
// неверный тип, тело не по схеме), получает код 9001 до вызова обработчика.
// Пути вне документа пропускаются — их обрабатывает роутер.
package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
)

// RequestValidator возвращает middleware проверки запросов по документу doc.
// Аутентификацию проверяет EdgeGuard, поэтому схемы безопасности здесь
// не вычисляются.
func RequestValidator(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("роутер openapi: %w", err)
	}
	logger = logger.With(slog.String("component", "openapi_validator"))
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				// 404/405 отдаёт роутер в своём формате.
				if !routeNotFound(err) {
					logger.Warn("Ошибка поиска маршрута",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Debug("Запрос не соответствует контракту",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				apierrors.InvalidParameter(w, validationMessage(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// validationMessage переводит ошибку проверки в сообщение конверта.
func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return "请求不符合接口定义"
	}

	switch {
	case reqErr.Parameter != nil:
		name := reqErr.Parameter.Name
		if errors.Is(reqErr.Err, openapi3filter.ErrInvalidRequired) ||
			errors.Is(reqErr.Err, openapi3filter.ErrInvalidEmptyValue) {
			return "缺少参数 " + name
		}
		return "参数 " + name + " 格式错误"
	case reqErr.RequestBody != nil:
		if errors.Is(reqErr.Err, openapi3filter.ErrInvalidRequired) {
			return "缺少请求体"
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if field := strings.Join(schemaErr.JSONPointer(), "."); field != "" {
				return "请求体字段 " + field + " 无效: " + schemaErr.Reason
			}
			return "请求体无效: " + schemaErr.Reason
		}
		return "请求体不是有效的JSON"
	}
	return "请求不符合接口定义"
}

// routeNotFound сообщает, что путь или метод отсутствует в документе.
func routeNotFound(err error) bool {
	var routeErr *routers.RouteError
	return errors.As(err, &routeErr)
}
