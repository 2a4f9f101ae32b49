package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

const roleColumns = `id, name, code, description, is_system, created_at, updated_at`

// roleColumnsQualified — те же столбцы для запросов с JOIN.
const roleColumnsQualified = `roles.id, roles.name, roles.code, roles.description,
	roles.is_system, roles.created_at, roles.updated_at`

// RoleRepository — доступ к ролям и их правам.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	GetByID(ctx context.Context, id string) (*model.Role, error)
	GetByCode(ctx context.Context, code string) (*model.Role, error)
	Search(ctx context.Context, params ListParams) ([]model.Role, int, error)
	Delete(ctx context.Context, id string) error

	Permissions(ctx context.Context, roleID string) ([]model.Permission, error)
	// SetPermissions заменяет набор прав роли.
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error
	RemovePermission(ctx context.Context, roleID, permissionID string) error
}

type roleRepo struct {
	db *sql.DB
}

// NewRoleRepository создаёт репозиторий ролей.
func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepo{db: db}
}

func scanRole(s scanner) (model.Role, error) {
	var (
		r                    model.Role
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&r.ID, &r.Name, &r.Code, &description, &r.IsSystem, &createdAt, &updatedAt); err != nil {
		return r, err
	}
	r.Description = stringPtr(description)

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return r, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return r, err
	}
	return r, nil
}

// queryRoles выполняет запрос и сканирует все строки как роли.
func queryRoles(ctx context.Context, db DBTX, query string, args ...any) ([]model.Role, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ролей: %w", err)
	}
	defer rows.Close()

	result := []model.Role{}
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования роли: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// Create вставляет роль.
func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	now := time.Now().UTC()
	role.CreatedAt, role.UpdatedAt = now, now

	query := fmt.Sprintf(`INSERT INTO roles (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, roleColumns)
	_, err := r.db.ExecContext(ctx, query,
		role.ID, role.Name, role.Code, nullString(role.Description), role.IsSystem,
		formatTime(role.CreatedAt), formatTime(role.UpdatedAt),
	)
	return wrapWrite(err, "ошибка создания роли")
}

// Update изменяет имя, код и описание роли.
func (r *roleRepo) Update(ctx context.Context, role *model.Role) error {
	role.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE roles SET name = ?, code = ?, description = ?, updated_at = ? WHERE id = ?`,
		role.Name, role.Code, nullString(role.Description), formatTime(role.UpdatedAt), role.ID,
	)
	if err != nil {
		return wrapWrite(err, "ошибка обновления роли")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает роль по id или ErrNotFound.
func (r *roleRepo) GetByID(ctx context.Context, id string) (*model.Role, error) {
	return r.getBy(ctx, "id", id)
}

// GetByCode возвращает роль по коду или ErrNotFound.
func (r *roleRepo) GetByCode(ctx context.Context, code string) (*model.Role, error) {
	return r.getBy(ctx, "code", code)
}

func (r *roleRepo) getBy(ctx context.Context, column, value string) (*model.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE %s = ?`, roleColumns, column)
	role, err := scanRole(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения роли: %w", err)
	}
	return &role, nil
}

var roleSortColumns = map[string]string{
	"name":      "name",
	"code":      "code",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Search ищет роли по имени или коду.
func (r *roleRepo) Search(ctx context.Context, params ListParams) ([]model.Role, int, error) {
	var (
		conditions []string
		args       []any
	)
	if params.Search != "" {
		conditions = append(conditions, `(name LIKE ? ESCAPE '\' OR code LIKE ? ESCAPE '\')`)
		p := likePattern(params.Search)
		args = append(args, p, p)
	}
	where := whereClause(conditions)
	orderBy := buildOrderBy(params.SortBy, params.SortOrder, roleSortColumns, "created_at")

	query := fmt.Sprintf(`SELECT %s FROM roles %s %s LIMIT ? OFFSET ?`, roleColumns, where, orderBy)
	result, err := queryRoles(ctx, r.db, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта ролей: %w", err)
	}
	return result, total, nil
}

// Delete удаляет роль; связи удаляются каскадно.
func (r *roleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления роли: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Permissions возвращает права роли.
func (r *roleRepo) Permissions(ctx context.Context, roleID string) ([]model.Permission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		ORDER BY p.sort, p.created_at`, permissionColumnsQualified)
	return queryPermissions(ctx, r.db, query, roleID)
}

// SetPermissions заменяет права роли в одной транзакции.
func (r *roleRepo) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, roleID); err != nil {
		return fmt.Errorf("ошибка очистки прав роли: %w", err)
	}
	for _, id := range permissionIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO role_permissions (role_id, permission_id) VALUES (?, ?)`, roleID, id); err != nil {
			return fmt.Errorf("ошибка назначения права %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// RemovePermission снимает право с роли.
func (r *roleRepo) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("ошибка снятия права: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
