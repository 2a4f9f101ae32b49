package request

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы вызова для метрик.
const (
	outcomeOK        = "ok"
	outcomeCanceled  = "canceled"
	outcomeTransport = "transport_error"
	outcomeBusiness  = "business_error"
	outcomeNetwork   = "network_error"
	outcomeDecode    = "decode_error"
)

// Prometheus-метрики диспетчера.
var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ac_request_total",
			Help: "Количество запросов диспетчера по исходу.",
		},
		[]string{"method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ac_request_duration_seconds",
			Help:    "Длительность запросов диспетчера в секундах.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	supersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ac_request_superseded_total",
		Help: "Количество запросов, отменённых более новым дубликатом.",
	})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ac_request_in_flight",
		Help: "Количество выполняющихся запросов.",
	})
)

func outcomeFor(kind Kind) string {
	switch kind {
	case KindTransport:
		return outcomeTransport
	case KindBusiness:
		return outcomeBusiness
	case KindNetwork:
		return outcomeNetwork
	default:
		return outcomeDecode
	}
}
