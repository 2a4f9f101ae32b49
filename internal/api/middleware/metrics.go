// metrics.go — Prometheus HTTP метрики dev API Admin Console.
// Регистрирует метрики: ac_http_requests_total, ac_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики dev API
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ac_http_requests_total",
			Help: "Общее количество HTTP-запросов к dev API Admin Console",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ac_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к dev API Admin Console в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath сводит путь к ограниченному набору лейблов:
// известные /api/* и служебные пути как есть, остальные страницы — "/page".
// Неизвестные /api/* — "/api/other".
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics", "/.well-known/jwks.json":
		return path
	}
	if strings.HasPrefix(path, "/api/") {
		if knownAPIPaths[strings.TrimSuffix(path, "/")] {
			return strings.TrimSuffix(path, "/")
		}
		return "/api/other"
	}
	return "/page"
}

// knownAPIPaths — endpoints dev API.
var knownAPIPaths = map[string]bool{
	"/api/health":                   true,
	"/api/users":                    true,
	"/api/users/me":                 true,
	"/api/users/register":           true,
	"/api/users/login":              true,
	"/api/users/login-password":     true,
	"/api/users/logout":             true,
	"/api/users/refresh-token":      true,
	"/api/users/encryption-key":     true,
	"/api/users/send-email-code":    true,
	"/api/users/send-login-code":    true,
	"/api/users/status":             true,
	"/api/users/assign-role":        true,
	"/api/users/assign-roles-batch": true,
	"/api/users/remove-role":        true,
	"/api/users/roles":              true,
	"/api/users/permissions":        true,
	"/api/users/check-permission":   true,
	"/api/users/check-role":         true,
	"/api/roles":                    true,
	"/api/roles/detail":             true,
	"/api/roles/by-code":            true,
	"/api/roles/assign-permissions": true,
	"/api/roles/permissions":        true,
	"/api/roles/remove-permission":  true,
	"/api/permissions":              true,
	"/api/permissions/search":       true,
	"/api/permissions/actions":      true,
	"/api/permissions/resources":    true,
	"/api/permissions/by-action":    true,
	"/api/permissions/by-resource":  true,
	"/api/permissions/detail":       true,
	"/api/permissions/tree":         true,
}
