package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/api/handlers"
	"github.com/bigkaa/goartstore/admin-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/admin-console/internal/api/openapi"
	"github.com/bigkaa/goartstore/admin-console/internal/config"
	"github.com/bigkaa/goartstore/admin-console/internal/database"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
	"github.com/bigkaa/goartstore/admin-console/internal/server"
	"github.com/bigkaa/goartstore/admin-console/internal/service"
)

// guardExclusions — служебные пути, которые отдаются без токена.
var guardExclusions = []string{"/health", "/metrics", "/.well-known", "/openapi.yaml"}

func newDevAPICommand(opts *rootOptions) *cobra.Command {
	var (
		port   int
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "dev-api",
		Short: "Локальный REST API для разработки (SQLite)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				if port < 1 || port > 65535 {
					return fmt.Errorf("--port: значение вне диапазона 1-65535: %d", port)
				}
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			return runDevAPI(cmd.Context(), cfg, opts.logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "порт HTTP (переопределяет AC_PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "файл БД (переопределяет AC_DB_PATH)")
	return cmd
}

// runDevAPI поднимает dev API и блокируется до сигнала завершения.
func runDevAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Dev API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("db", cfg.DBPath),
	)

	// 1. Подключение к SQLite и миграции
	db, err := database.Connect(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Ошибка закрытия БД", slog.String("error", err.Error()))
		}
	}()
	if err := database.MigrateSchema(db, logger); err != nil {
		return err
	}

	// 2. Сервисы и обработчики; письма с кодами уходят в лог
	api, err := newDevAPI(ctx, cfg, db, service.NewLogMailer(logger), 0, logger)
	if err != nil {
		return err
	}

	// 3. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, api.handler, api.middlewares...)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("сервер завершился с ошибкой: %w", err)
	}

	logger.Info("Dev API остановлен")
	return nil
}

// devAPI — собранный dev API: маршруты и цепочка middleware.
type devAPI struct {
	handler     *handlers.APIHandler
	middlewares []func(http.Handler) http.Handler
}

// newDevAPI заполняет БД начальными данными и собирает сервисы.
// hashCost — стоимость bcrypt (0 — по умолчанию).
func newDevAPI(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	mailer service.Mailer,
	hashCost int,
	logger *slog.Logger,
) (*devAPI, error) {
	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	permissions := repository.NewPermissionRepository(db)

	seed := service.SeedConfig{
		AdminEmail:    cfg.SeedAdminEmail,
		AdminPassword: cfg.SeedAdminPassword,
		HashCost:      hashCost,
	}
	if err := service.Seed(ctx, seed, users, roles, permissions, logger); err != nil {
		return nil, fmt.Errorf("начальные данные: %w", err)
	}

	tokens, err := service.NewTokenService(ctx, service.TokenConfig{
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
		Leeway: cfg.JWTLeeway,
	}, logger)
	if err != nil {
		return nil, err
	}

	auth := service.NewAuthService(service.AuthConfig{
		KeyTTL:   cfg.EncryptionKeyTTL,
		CodeTTL:  cfg.EmailCodeTTL,
		HashCost: hashCost,
	}, users, roles, tokens, mailer, logger)

	handler := handlers.NewAPIHandler(
		handlers.NewHealthHandler(database.NewReadinessChecker(db), tokens),
		auth,
		tokens,
		service.NewUserService(users, roles, hashCost, logger),
		service.NewRoleService(roles, permissions, logger),
		service.NewPermissionService(permissions, logger),
		logger,
	)
	guard := middleware.NewEdgeGuard(auth, logger, middleware.PublicAPIPaths...)

	doc, err := openapi.Load(ctx)
	if err != nil {
		return nil, err
	}
	validator, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		return nil, err
	}

	return &devAPI{
		handler: handler,
		middlewares: []func(http.Handler) http.Handler{
			chimw.RequestID,
			middleware.RequestLogger(logger),
			middleware.MetricsMiddleware(),
			server.WithExclusions(guard.Middleware(), guardExclusions...),
			validator,
		},
	}, nil
}
