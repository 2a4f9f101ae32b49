// health.go — обработчики health endpoints Admin Console.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (SQLite и ключи подписи доступны)
// /api/health — состояние сервиса в конверте клиента
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/config"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

const serviceName = "admin-console"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	dbChecker   ReadinessChecker
	keyChecker  ReadinessChecker
	promHandler http.Handler
	startedAt   time.Time
}

// NewHealthHandler создаёт обработчик health endpoints.
// dbChecker — проверка SQLite, keyChecker — проверка ключей подписи.
// nil-проверка считается "fail".
func NewHealthHandler(dbChecker, keyChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		dbChecker:   dbChecker,
		keyChecker:  keyChecker,
		promHandler: promhttp.Handler(),
		startedAt:   time.Now(),
	}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		SQLite      healthCheckResult `json:"sqlite"`
		SigningKeys healthCheckResult `json:"signingKeys"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	resp := healthLiveResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// HealthReady — readiness probe. Проверяет SQLite и ключи подписи.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
	resp.Checks.SQLite = check(h.dbChecker)
	resp.Checks.SigningKeys = check(h.keyChecker)

	resp.Status = overallStatus(resp.Checks.SQLite.Status, resp.Checks.SigningKeys.Status)

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == statusFail {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// APIHealth — GET /api/health. Всегда HTTP 200, состояние в data.
func (h *HealthHandler) APIHealth(w http.ResponseWriter, _ *http.Request) {
	db := check(h.dbChecker)
	keys := check(h.keyChecker)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	apierrors.OK(w, model.Health{
		Service:   serviceName,
		Status:    overallStatus(db.Status, keys.Status),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Database: map[string]any{
			"type":    "sqlite",
			"status":  db.Status,
			"message": db.Message,
		},
		System: map[string]any{
			"goVersion":  runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"heapAlloc":  mem.HeapAlloc,
			"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		},
	})
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// Константы статусов health check.
const statusFail = "fail"

func check(c ReadinessChecker) healthCheckResult {
	if c == nil {
		return healthCheckResult{Status: statusFail, Message: "не инициализирован"}
	}
	status, msg := c.CheckReady()
	return healthCheckResult{Status: status, Message: msg}
}

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail — итог fail.
// Если хотя бы одна degraded — итог degraded.
// Иначе — ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == "degraded" {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "ok"
}
