package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/config"
	"github.com/bigkaa/goartstore/admin-console/internal/kvstore"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/session"
)

// app — зависимости клиентской команды.
type app struct {
	store   kvstore.ClosableStore
	api     *apiclient.Client
	session *session.Session
}

// openStore открывает файл состояния; ephemeral — хранилище в памяти.
func openStore(ctx context.Context, cfg *config.Config, ephemeral bool, logger *slog.Logger) (kvstore.ClosableStore, error) {
	if ephemeral {
		logger.Debug("Состояние хранится в памяти процесса")
		return kvstore.NewEphemeralStore(), nil
	}
	store, err := kvstore.OpenSQLite(ctx, cfg.StatePath, logger)
	if err != nil {
		return nil, fmt.Errorf("открытие файла состояния %s: %w", cfg.StatePath, err)
	}
	return store, nil
}

// newApp открывает хранилище состояния и собирает диспетчер, клиент и сессию.
func newApp(ctx context.Context, cfg *config.Config, store kvstore.ClosableStore, logger *slog.Logger, notifier request.Notifier) (*app, error) {
	httpClient, err := request.NewHTTPClient(cfg.CACertPath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	dispatcher := request.New(request.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: httpClient,
		Tokens:     store,
		Notifier:   notifier,
		Logger:     logger,
	})
	api := apiclient.New(dispatcher)

	return &app{
		store:   store,
		api:     api,
		session: session.New(api, store, logger),
	}, nil
}

// withApp выполняет fn с собранным app и закрывает его после.
func (o *rootOptions) withApp(cmd *cobra.Command, notifier request.Notifier, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	store, err := openStore(ctx, o.cfg, o.ephemeral, o.logger)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, o.cfg, store, o.logger, notifier)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.store.Close(); err != nil {
			o.logger.Warn("Ошибка закрытия хранилища состояния", slog.String("error", err.Error()))
		}
	}()

	if o.metricsAddr != "" {
		stop, addr, err := serveMetrics(o.metricsAddr, o.logger)
		if err != nil {
			return err
		}
		defer stop()
		o.logger.Info("Метрики клиента доступны", slog.String("addr", "http://"+addr+"/metrics"))
	}
	return fn(ctx, a)
}

// printNotifier печатает уведомления диспетчера построчно.
func printNotifier(w io.Writer) request.Notifier {
	return request.NotifierFunc(func(t request.Toast) {
		_, _ = fmt.Fprintf(w, "%s: %s\n", t.Title, t.Description)
	})
}

// isTerminal — w является терминалом.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
