// Пакет errors — ответы dev API в едином конверте {statusCode, message, data}.
// Прикладные ошибки отдаются с HTTP 200 и statusCode 9xxx,
// транспортные (401, 404, 500) — соответствующим HTTP-статусом.
// Все ответы должны проходить через WriteEnvelope.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// CodeSuccess — statusCode успешного ответа.
const CodeSuccess = http.StatusOK

// Envelope — тело любого ответа API.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// StatusCodeRecorder — обёртка ResponseWriter, которой сообщается
// statusCode конверта (логирование запросов).
type StatusCodeRecorder interface {
	RecordStatusCode(code int)
}

// recordStatusCode ищет StatusCodeRecorder по цепочке Unwrap.
func recordStatusCode(w http.ResponseWriter, code int) {
	for w != nil {
		if rec, ok := w.(StatusCodeRecorder); ok {
			rec.RecordStatusCode(code)
			return
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return
		}
		w = u.Unwrap()
	}
}

// WriteEnvelope записывает конверт с указанным HTTP-статусом.
func WriteEnvelope(w http.ResponseWriter, httpStatus int, env Envelope) {
	recordStatusCode(w, env.StatusCode)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(env)
}

// OK — успешный ответ с данными.
func OK(w http.ResponseWriter, data any) {
	WriteEnvelope(w, http.StatusOK, Envelope{StatusCode: CodeSuccess, Message: "success", Data: data})
}

// Business — прикладная ошибка: HTTP 200, statusCode = code.
// Пустое message заменяется текстом кода.
func Business(w http.ResponseWriter, code request.BusinessCode, message string) {
	if message == "" {
		message = code.Message()
	}
	WriteEnvelope(w, http.StatusOK, Envelope{StatusCode: int(code), Message: message})
}

// WriteError — транспортная ошибка: HTTP-статус и statusCode совпадают.
func WriteError(w http.ResponseWriter, httpStatus int, message string) {
	WriteEnvelope(w, httpStatus, Envelope{StatusCode: httpStatus, Message: message})
}

// --- Конструкторы для типичных ошибок ---

// InvalidParameter — 9001 некорректные входные данные.
func InvalidParameter(w http.ResponseWriter, message string) {
	Business(w, request.CodeInvalidParameter, message)
}

// Unauthorized — 401 без токена или с невалидным токеном.
// statusCode 9000, чтобы клиент показал «缺少token».
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = request.CodeMissingToken.Message()
	}
	WriteEnvelope(w, http.StatusUnauthorized, Envelope{StatusCode: int(request.CodeMissingToken), Message: message})
}

// NotFound — 404 неизвестный маршрут.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// MethodNotAllowed — 405.
func MethodNotAllowed(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusMethodNotAllowed, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
