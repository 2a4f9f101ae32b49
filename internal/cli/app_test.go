package cli

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/admin-console/internal/session"
)

func TestEphemeral_NoStateFile(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "--ephemeral", "login", "--email", "admin@example.com", "--password", "admin123")
	if !strings.Contains(out, "登录成功") {
		t.Errorf("login: %q", out)
	}
	if _, err := os.Stat(env.state); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("файл состояния создан: %v", err)
	}

	// Сессия живёт только в пределах процесса команды
	if _, _, err := env.run(t, "--ephemeral", "whoami"); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("whoami в новом процессе: %v", err)
	}
}

func TestServeMetrics_ExposesDispatcherMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")

	stop, addr, err := serveMetrics("127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("serveMetrics: %v", err)
	}
	defer stop()

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("статус = %d", resp.StatusCode)
	}
	for _, want := range []string{"ac_request_total", "ac_request_duration_seconds"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("нет метрики %s", want)
		}
	}
}

func TestMetricsAddr_Invalid(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.run(t, "--metrics-addr", "not-an-address", "whoami"); err == nil {
		t.Error("ожидалась ошибка --metrics-addr")
	}
}
