package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsShutdownTimeout — ожидание остановки сервера метрик.
const metricsShutdownTimeout = 2 * time.Second

// serveMetrics отдаёт метрики диспетчера и хранилища состояния на addr,
// пока выполняется команда. Возвращает функцию остановки и фактический адрес.
func serveMetrics(addr string, logger *slog.Logger) (stop func(), bound string, err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("--metrics-addr: %w", err)
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Сервер метрик остановлен с ошибкой", slog.String("error", err.Error()))
		}
	}()

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Ошибка остановки сервера метрик", slog.String("error", err.Error()))
		}
	}
	return stop, ln.Addr().String(), nil
}
