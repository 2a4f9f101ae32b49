// search.go — общие параметры постраничных списков и метрики поиска.
// page/limit из запроса нормализуются в limit/offset репозитория.
package service

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// Ограничения размера страницы.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Prometheus-метрики поиска.
var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ac_search_total",
		Help: "Общее количество запросов списков.",
	}, []string{"entity"})
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ac_search_duration_seconds",
		Help:    "Длительность запросов списков.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity"})
)

// ListQuery — параметры списка в терминах API.
type ListQuery struct {
	// Page — номер страницы с 1
	Page int
	// Limit — размер страницы
	Limit int
	// Search — подстрока поиска
	Search string
	// SortBy — поле сортировки
	SortBy string
	// SortOrder — asc или desc
	SortOrder string
}

// Normalize приводит page и limit к допустимым значениям.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// params переводит страницу в limit/offset репозитория.
func (q ListQuery) params() repository.ListParams {
	q = q.Normalize()
	return repository.ListParams{
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.Limit,
		Offset:    (q.Page - 1) * q.Limit,
	}
}

// observeSearch обновляет метрики и пишет debug-лог выполненного списка.
func observeSearch(logger *slog.Logger, entity string, start time.Time, total, returned int) {
	duration := time.Since(start)
	searchTotal.WithLabelValues(entity).Inc()
	searchDuration.WithLabelValues(entity).Observe(duration.Seconds())

	logger.Debug("Поиск выполнен",
		slog.String("entity", entity),
		slog.Int("total", total),
		slog.Int("returned", returned),
		slog.Duration("duration", duration),
	)
}
