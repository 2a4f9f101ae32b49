// logging.go — middleware логирования входящих HTTP-запросов через slog.
// Перехватывает HTTP-статус, statusCode конверта, размер ответа,
// длительность обработки и пользователя, прошедшего EdgeGuard.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
)

// businessCodeMin — начало диапазона прикладных кодов ошибок.
const businessCodeMin = 9000

// responseWriter — обёртка для перехвата статус-кода ответа.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	// envelopeCode — statusCode из тела конверта (0, если конверта не было).
	envelopeCode int
	written      int64
}

var _ apierrors.StatusCodeRecorder = (*responseWriter)(nil)

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// RecordStatusCode запоминает statusCode конверта.
func (rw *responseWriter) RecordStatusCode(code int) {
	rw.envelopeCode = code
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// requestFields — поля записи лога, которые заполняют вложенные middleware.
type requestFields struct {
	userID string
}

type requestFieldsKey struct{}

// noteUser сообщает логгеру запроса аутентифицированного пользователя.
func noteUser(ctx context.Context, userID string) {
	if f, ok := ctx.Value(requestFieldsKey{}).(*requestFields); ok {
		f.userID = userID
	}
}

// RequestLogger возвращает middleware, логирующий каждый HTTP-запрос:
// метод, путь, HTTP-статус, statusCode конверта, пользователя,
// длительность, размер ответа, remote_addr и request_id.
// Уровень: ERROR (5xx), WARN (4xx или прикладной код 9xxx), иначе INFO.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			fields := &requestFields{}
			r = r.WithContext(context.WithValue(r.Context(), requestFieldsKey{}, fields))

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400, wrapped.envelopeCode >= businessCodeMin:
				level = slog.LevelWarn
			}

			// Логгер может стоять и после EdgeGuard
			userID := fields.userID
			if userID == "" {
				userID = SubjectFromContext(r.Context())
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Int("status_code", wrapped.envelopeCode),
				slog.String("user_id", userID),
				slog.Duration("duration", duration),
				slog.Int64("bytes", wrapped.written),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
