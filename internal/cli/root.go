// Пакет cli — команды admin-console на cobra.
// Клиентские команды работают с REST API через сессию и диспетчер запросов,
// dev-api поднимает локальный backend на SQLite.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/config"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// rootOptions — глобальные флаги и то, что из них собрано.
type rootOptions struct {
	apiURL    string
	statePath string
	caCert    string
	logLevel  string
	logFormat string
	pageSize  int
	plain     bool
	ephemeral bool

	metricsAddr string

	cfg    *config.Config
	logger *slog.Logger
	in     *bufio.Reader
}

// NewRootCommand собирает дерево команд.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "admin-console",
		Short:         "Консоль администратора: пользователи, роли и права",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.apiURL, "api-url", "", "базовый URL REST API (переопределяет AC_API_BASE_URL)")
	f.StringVar(&opts.statePath, "state", "", "файл локального состояния (переопределяет AC_STATE_PATH)")
	f.StringVar(&opts.caCert, "ca-cert", "", "CA-сертификат для TLS (переопределяет AC_CA_CERT)")
	f.StringVar(&opts.logLevel, "log-level", "", "уровень логов: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "формат логов: json, text")
	f.IntVar(&opts.pageSize, "page-size", 0, "размер страницы таблиц: 10, 20, 50, 100")
	f.BoolVar(&opts.plain, "plain", false, "печатать таблицу без интерактивного режима")
	f.BoolVar(&opts.ephemeral, "ephemeral", false, "держать сессию в памяти, не открывая файл состояния")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "адрес для /metrics диспетчера на время команды (например 127.0.0.1:9464)")

	root.AddCommand(
		newLoginCommand(opts),
		newLoginCodeCommand(opts),
		newSendCodeCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newRefreshCommand(opts),
		newHealthCommand(opts),
		newUsersCommand(opts),
		newRolesCommand(opts),
		newPermissionsCommand(opts),
		newDevAPICommand(opts),
	)
	return root
}

// Execute выполняет команду и возвращает код выхода.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		reportError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// reportError печатает ошибку команды. Сбои запросов диспетчер уже
// показал уведомлением, их не повторяем.
func reportError(w io.Writer, err error) {
	var reqErr *request.Error
	if errors.As(err, &reqErr) {
		return
	}
	_, _ = fmt.Fprintf(w, "错误: %v\n", err)
}

// load читает конфигурацию из окружения и применяет флаги поверх неё.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIBaseURL = strings.TrimRight(o.apiURL, "/")
		if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
			return fmt.Errorf("--api-url: ожидается http:// или https://, получено %q", o.apiURL)
		}
	}
	if flags.Changed("state") {
		cfg.StatePath = o.statePath
	}
	if flags.Changed("ca-cert") {
		cfg.CACertPath = o.caCert
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, err = config.ParseLogLevel(o.logLevel)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	if flags.Changed("log-format") {
		if o.logFormat != "json" && o.logFormat != "text" {
			return fmt.Errorf("--log-format: недопустимый формат %q, допустимые: json, text", o.logFormat)
		}
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("page-size") {
		if !slices.Contains(config.PageSizeOptions, o.pageSize) {
			return fmt.Errorf("--page-size: недопустимый размер %d, допустимые: %v", o.pageSize, config.PageSizeOptions)
		}
		cfg.DefaultPageSize = o.pageSize
	}

	o.cfg = cfg
	o.logger = config.SetupLogger(cfg, cmd.ErrOrStderr())
	o.in = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// prompt спрашивает значение у пользователя; конец ввода — пустая строка.
func (o *rootOptions) prompt(cmd *cobra.Command, label string) (string, error) {
	if _, err := fmt.Fprint(cmd.ErrOrStderr(), label); err != nil {
		return "", err
	}
	line, err := o.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("чтение ввода: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptIfEmpty спрашивает значение, если флаг не задан.
func (o *rootOptions) promptIfEmpty(cmd *cobra.Command, value *string, label string) error {
	if *value != "" {
		return nil
	}
	v, err := o.prompt(cmd, label)
	if err != nil {
		return err
	}
	*value = v
	return nil
}
