package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// userColumns — список столбцов таблицы users для SELECT-запросов.
const userColumns = `id, email, name, password_hash, email_verified, preferences,
	last_login_ip, last_login_at, login_count, is_active, created_at, updated_at`

// UserSearchParams — параметры поиска пользователей.
type UserSearchParams struct {
	ListParams
	// IsActive — фильтр по активности (nil — не применяется)
	IsActive *bool
}

// UserRepository — доступ к пользователям и их ролям.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Search возвращает страницу пользователей и общее количество.
	Search(ctx context.Context, params UserSearchParams) ([]*model.User, int, error)
	// Delete удаляет пользователей, возвращает число удалённых.
	Delete(ctx context.Context, ids []string) (int, error)
	SetActive(ctx context.Context, ids []string, active bool) (int, error)
	// RecordLogin обновляет IP, время и счётчик входов.
	RecordLogin(ctx context.Context, id, ip string, at time.Time) error

	Roles(ctx context.Context, userID string) ([]model.Role, error)
	AddRole(ctx context.Context, userID, roleID string) error
	// SetRoles заменяет набор ролей пользователя.
	SetRoles(ctx context.Context, userID string, roleIDs []string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	// Permissions — итоговые права пользователя через роли.
	Permissions(ctx context.Context, userID string) ([]model.Permission, error)
	HasPermission(ctx context.Context, userID, action, resource string) (bool, error)
	HasRole(ctx context.Context, userID, roleCode string) (bool, error)
}

// userRepo — реализация UserRepository через database/sql.
type userRepo struct {
	db *sql.DB
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

// scanner — общий интерфейс *sql.Row и *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u                    model.User
		prefs                string
		lastLogin            sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.EmailVerified, &prefs,
		&u.LastLoginIP, &lastLogin, &u.LoginCount, &u.IsActive, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if prefs != "" {
		if err := json.Unmarshal([]byte(prefs), &u.Preferences); err != nil {
			return nil, fmt.Errorf("разбор preferences: %w", err)
		}
	}
	var err error
	if u.LastLoginAt, err = parseNullTime(lastLogin); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create вставляет пользователя. CreatedAt/UpdatedAt заполняются, если пусты.
func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt

	prefs := []byte("{}")
	if len(u.Preferences) > 0 {
		var err error
		if prefs, err = json.Marshal(u.Preferences); err != nil {
			return fmt.Errorf("сериализация preferences: %w", err)
		}
	}

	query := fmt.Sprintf(`INSERT INTO users (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, userColumns)
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, u.EmailVerified, string(prefs),
		u.LastLoginIP, nil, u.LoginCount, u.IsActive, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	return wrapWrite(err, "ошибка создания пользователя")
}

// GetByID возвращает пользователя по id или ErrNotFound.
func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail возвращает пользователя по email или ErrNotFound.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepo) getBy(ctx context.Context, column, value string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = ?`, userColumns, column)
	u, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

// userSortColumns — whitelist полей сортировки.
var userSortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"lastLoginAt": "last_login_at",
	"loginCount":  "login_count",
}

func buildUserWhere(params UserSearchParams) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if params.Search != "" {
		conditions = append(conditions, `(name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\')`)
		p := likePattern(params.Search)
		args = append(args, p, p)
	}
	if params.IsActive != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *params.IsActive)
	}
	return whereClause(conditions), args
}

// Search выполняет поиск пользователей с фильтрами, сортировкой и пагинацией.
// Роли каждого пользователя подгружаются отдельным запросом.
func (r *userRepo) Search(ctx context.Context, params UserSearchParams) ([]*model.User, int, error) {
	where, args := buildUserWhere(params)
	orderBy := buildOrderBy(params.SortBy, params.SortOrder, userSortColumns, "created_at")

	dataQuery := fmt.Sprintf(`SELECT %s FROM users %s %s LIMIT ? OFFSET ?`, userColumns, where, orderBy)
	rows, err := r.db.QueryContext(ctx, dataQuery, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка поиска пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	rows.Close()

	for _, u := range result {
		if u.Roles, err = r.Roles(ctx, u.ID); err != nil {
			return nil, 0, err
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users %s`, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	return result, total, nil
}

// Delete удаляет пользователей по списку id.
func (r *userRepo) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM users WHERE id IN (%s)`, placeholders(len(ids)))
	res, err := r.db.ExecContext(ctx, query, toArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления пользователей: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// SetActive включает или выключает пользователей.
func (r *userRepo) SetActive(ctx context.Context, ids []string, active bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`UPDATE users SET is_active = ?, updated_at = ? WHERE id IN (%s)`, placeholders(len(ids)))
	args := append([]any{active, formatTime(time.Now())}, toArgs(ids)...)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ошибка изменения статуса: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// RecordLogin фиксирует успешный вход.
func (r *userRepo) RecordLogin(ctx context.Context, id, ip string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET last_login_ip = ?, last_login_at = ?, login_count = login_count + 1, updated_at = ?
		WHERE id = ?`,
		ip, formatTime(at), formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("ошибка фиксации входа: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Roles возвращает роли пользователя.
func (r *userRepo) Roles(ctx context.Context, userID string) ([]model.Role, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM roles
		JOIN user_roles ur ON ur.role_id = roles.id
		WHERE ur.user_id = ?
		ORDER BY roles.created_at`, roleColumnsQualified)
	return queryRoles(ctx, r.db, query, userID)
}

// AddRole назначает роль; повторное назначение не ошибка.
func (r *userRepo) AddRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID)
	if err != nil {
		return fmt.Errorf("ошибка назначения роли: %w", err)
	}
	return nil
}

// SetRoles заменяет роли пользователя в одной транзакции.
func (r *userRepo) SetRoles(ctx context.Context, userID string, roleIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("ошибка очистки ролей: %w", err)
	}
	for _, id := range roleIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, id); err != nil {
			return fmt.Errorf("ошибка назначения роли %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// RemoveRole снимает роль; ErrNotFound, если связи не было.
func (r *userRepo) RemoveRole(ctx context.Context, userID, roleID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
	if err != nil {
		return fmt.Errorf("ошибка снятия роли: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Permissions — права пользователя через все его роли, без повторов.
func (r *userRepo) Permissions(ctx context.Context, userID string) ([]model.Permission, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = ?
		ORDER BY p.sort, p.created_at`, permissionColumnsQualified)
	return queryPermissions(ctx, r.db, query, userID)
}

// HasPermission проверяет право action:resource через роли.
func (r *userRepo) HasPermission(ctx context.Context, userID, action, resource string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN user_roles ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = ? AND p.action = ? AND p.resource = ? AND p.status = 1`,
		userID, action, resource,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки права: %w", err)
	}
	return n > 0, nil
}

// HasRole проверяет наличие роли с кодом roleCode.
func (r *userRepo) HasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM roles
		JOIN user_roles ur ON ur.role_id = roles.id
		WHERE ur.user_id = ? AND roles.code = ?`,
		userID, roleCode,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки роли: %w", err)
	}
	return n > 0, nil
}
