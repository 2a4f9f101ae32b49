// Пакет config — загрузка и валидация конфигурации Admin Console
// из переменных окружения.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// PageSizeOptions — допустимые размеры страницы таблиц.
var PageSizeOptions = []int{10, 20, 50, 100}

// Config содержит все параметры конфигурации Admin Console.
// Клиентская часть (CLI/TUI) и dev API читают одну и ту же структуру.
type Config struct {
	// --- Логирование ---

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Клиент API ---

	// Базовый URL REST API (по умолчанию http://localhost:8040)
	APIBaseURL string
	// Таймаут одного запроса диспетчера (по умолчанию 5s)
	RequestTimeout time.Duration
	// Путь к CA-сертификату для TLS (пусто — системный пул)
	CACertPath string
	// Путь к файлу локального хранилища токена (SQLite)
	StatePath string
	// Размер страницы таблиц по умолчанию (10, 20, 50, 100)
	DefaultPageSize int

	// --- Dev API ---

	// Порт dev API сервера
	Port int
	// Путь к файлу БД dev API (SQLite)
	DBPath string
	// Время жизни access token
	TokenTTL time.Duration
	// Время жизни ключа шифрования пароля
	EncryptionKeyTTL time.Duration
	// Время жизни кода подтверждения по email
	EmailCodeTTL time.Duration
	// Issuer выпускаемых JWT
	JWTIssuer string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Учётная запись администратора, создаваемая при первом запуске
	SeedAdminEmail    string
	SeedAdminPassword string //nolint:gosec // G101: значение из окружения

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Все параметры имеют значения по умолчанию; ошибка возвращается
// только для некорректных значений.
//
//nolint:funlen,cyclop // линейный разбор переменных окружения
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Логирование ---

	// AC_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = ParseLogLevel(getEnvDefault("AC_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AC_LOG_LEVEL: %w", err)
	}

	// AC_LOG_FORMAT — формат логов (по умолчанию text)
	cfg.LogFormat = getEnvDefault("AC_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AC_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Клиент API ---

	cfg.APIBaseURL = strings.TrimRight(getEnvDefault("AC_API_BASE_URL", "http://localhost:8040"), "/")
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return nil, fmt.Errorf("AC_API_BASE_URL: ожидается http:// или https://, получено %q", cfg.APIBaseURL)
	}

	cfg.RequestTimeout, err = getEnvDurationPositive("AC_REQUEST_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_REQUEST_TIMEOUT: %w", err)
	}

	cfg.CACertPath = os.Getenv("AC_CA_CERT")
	cfg.StatePath = getEnvDefault("AC_STATE_PATH", defaultStatePath())

	cfg.DefaultPageSize, err = getEnvInt("AC_PAGE_SIZE", 10)
	if err != nil {
		return nil, fmt.Errorf("AC_PAGE_SIZE: %w", err)
	}
	if !slices.Contains(PageSizeOptions, cfg.DefaultPageSize) {
		return nil, fmt.Errorf("AC_PAGE_SIZE: недопустимый размер %d, допустимые: %v", cfg.DefaultPageSize, PageSizeOptions)
	}

	// --- Dev API ---

	cfg.Port, err = getEnvInt("AC_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("AC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("AC_PORT: значение вне диапазона 1-65535: %d", cfg.Port)
	}

	cfg.DBPath = getEnvDefault("AC_DB_PATH", "admin-console-dev.db")

	cfg.TokenTTL, err = getEnvDurationPositive("AC_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("AC_TOKEN_TTL: %w", err)
	}
	cfg.EncryptionKeyTTL, err = getEnvDurationPositive("AC_ENCRYPTION_KEY_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AC_ENCRYPTION_KEY_TTL: %w", err)
	}
	cfg.EmailCodeTTL, err = getEnvDurationPositive("AC_EMAIL_CODE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("AC_EMAIL_CODE_TTL: %w", err)
	}

	cfg.JWTIssuer = getEnvDefault("AC_JWT_ISSUER", "admin-console")
	cfg.JWTLeeway, err = getEnvDuration("AC_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_JWT_LEEWAY: %w", err)
	}

	cfg.SeedAdminEmail = getEnvDefault("AC_SEED_ADMIN_EMAIL", "admin@example.com")
	cfg.SeedAdminPassword = getEnvDefault("AC_SEED_ADMIN_PASSWORD", "admin123")

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("AC_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("AC_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("AC_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_HTTP_IDLE_TIMEOUT: %w", err)
	}

	cfg.ShutdownTimeout, err = getEnvDuration("AC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AC_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// CLI пишет логи в stderr, чтобы не смешивать их с выводом таблиц.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// defaultStatePath возвращает путь к файлу состояния в каталоге конфигурации пользователя.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "admin-console-state.db"
	}
	return filepath.Join(dir, "admin-console", "state.db")
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationPositive — как getEnvDuration, но значение должно быть > 0.
func getEnvDurationPositive(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// ParseLogLevel преобразует строку уровня логирования в slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
