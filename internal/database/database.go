// Пакет database — подключение к SQLite (modernc.org/sqlite, без cgo),
// применение миграций (golang-migrate) и проверка готовности.
// Используется и dev API (схема пользователей, ролей, прав),
// и локальным хранилищем токена клиента.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // драйвер "sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MemoryPath — путь для in-memory БД (тесты).
const MemoryPath = ":memory:"

// Connect открывает файл SQLite и проверяет подключение.
// Каталог файла создаётся при необходимости.
func Connect(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога БД: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
	}

	// SQLite допускает одного писателя; для :memory: каждое соединение — отдельная БД.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка подключения к SQLite: %w", err)
	}

	logger.Debug("Подключение к SQLite установлено", slog.String("path", path))
	return db, nil
}

// MigrateSchema применяет миграции схемы dev API.
func MigrateSchema(db *sql.DB, logger *slog.Logger) error {
	return Migrate(db, migrationsFS, "migrations", "schema_migrations", logger)
}

// Migrate применяет SQL-миграции из fsys/dir к базе данных.
// table — имя таблицы версий, чтобы несколько наборов миграций
// могли жить в одном файле.
func Migrate(db *sql.DB, fsys fs.FS, dir, table string, logger *slog.Logger) error {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("ошибка создания источника миграций: %w", err)
	}
	defer source.Close()

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{MigrationsTable: table})
	if err != nil {
		return fmt.Errorf("ошибка инициализации драйвера миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	// m.Close() не вызываем: драйвер закрыл бы переданный *sql.DB.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Debug("Миграции применены",
		slog.String("table", table),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)

	return nil
}

// ReadinessChecker — проверка готовности SQLite для health endpoint.
type ReadinessChecker struct {
	db *sql.DB
}

// NewReadinessChecker создаёт проверку готовности.
func NewReadinessChecker(db *sql.DB) *ReadinessChecker {
	return &ReadinessChecker{db: db}
}

// CheckReady проверяет подключение через ping.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return "fail", fmt.Sprintf("SQLite недоступна: %v", err)
	}
	return "ok", "подключение активно"
}
