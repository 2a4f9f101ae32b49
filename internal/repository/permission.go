package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

const permissionColumns = `id, name, type, action, resource, parent_id, path, icon,
	sort, visible, status, description, created_at, updated_at`

const permissionColumnsQualified = `p.id, p.name, p.type, p.action, p.resource, p.parent_id, p.path, p.icon,
	p.sort, p.visible, p.status, p.description, p.created_at, p.updated_at`

// PermissionSearchParams — параметры поиска прав.
type PermissionSearchParams struct {
	ListParams
	// Action, Resource — точные фильтры (пусто — не применяются)
	Action   string
	Resource string
}

// PermissionRepository — доступ к правам.
type PermissionRepository interface {
	Create(ctx context.Context, p *model.Permission) error
	Update(ctx context.Context, p *model.Permission) error
	GetByID(ctx context.Context, id string) (*model.Permission, error)
	Search(ctx context.Context, params PermissionSearchParams) ([]model.Permission, int, error)
	// All возвращает все права, упорядоченные по sort.
	All(ctx context.Context) ([]model.Permission, error)
	// Actions, Resources — различные значения action и resource.
	Actions(ctx context.Context) ([]string, error)
	Resources(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type permissionRepo struct {
	db *sql.DB
}

// NewPermissionRepository создаёт репозиторий прав.
func NewPermissionRepository(db *sql.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func scanPermission(s scanner) (model.Permission, error) {
	var (
		p                    model.Permission
		parentID             sql.NullString
		description          sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(
		&p.ID, &p.Name, &p.Type, &p.Action, &p.Resource, &parentID, &p.Path, &p.Icon,
		&p.Sort, &p.Visible, &p.Status, &description, &createdAt, &updatedAt,
	); err != nil {
		return p, err
	}
	p.ParentID = stringPtr(parentID)
	p.Description = stringPtr(description)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, err
	}
	return p, nil
}

func queryPermissions(ctx context.Context, db DBTX, query string, args ...any) ([]model.Permission, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса прав: %w", err)
	}
	defer rows.Close()

	result := []model.Permission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования права: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// Create вставляет право. Пустой Type становится api, Status — 1.
func (r *permissionRepo) Create(ctx context.Context, p *model.Permission) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Type == "" {
		p.Type = model.PermissionTypeAPI
	}
	if p.Status == 0 {
		p.Status = 1
	}

	query := fmt.Sprintf(`INSERT INTO permissions (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, permissionColumns)
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Type, p.Action, p.Resource, nullString(p.ParentID), p.Path, p.Icon,
		p.Sort, p.Visible, p.Status, nullString(p.Description),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	return wrapWrite(err, "ошибка создания права")
}

// Update изменяет редактируемые поля права.
func (r *permissionRepo) Update(ctx context.Context, p *model.Permission) error {
	p.UpdatedAt = time.Now().UTC()
	if p.Type == "" {
		p.Type = model.PermissionTypeAPI
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE permissions
		SET name = ?, type = ?, action = ?, resource = ?, parent_id = ?, path = ?, icon = ?,
			sort = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Type, p.Action, p.Resource, nullString(p.ParentID), p.Path, p.Icon,
		p.Sort, nullString(p.Description), formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return wrapWrite(err, "ошибка обновления права")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает право по id или ErrNotFound.
func (r *permissionRepo) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions WHERE id = ?`, permissionColumns)
	p, err := scanPermission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения права: %w", err)
	}
	return &p, nil
}

var permissionSortColumns = map[string]string{
	"name":      "name",
	"action":    "action",
	"resource":  "resource",
	"sort":      "sort",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Search ищет права по имени и фильтрам action/resource.
func (r *permissionRepo) Search(ctx context.Context, params PermissionSearchParams) ([]model.Permission, int, error) {
	var (
		conditions []string
		args       []any
	)
	if params.Search != "" {
		conditions = append(conditions, `name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(params.Search))
	}
	if params.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, params.Action)
	}
	if params.Resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, params.Resource)
	}
	where := whereClause(conditions)
	orderBy := buildOrderBy(params.SortBy, params.SortOrder, permissionSortColumns, "created_at")

	query := fmt.Sprintf(`SELECT %s FROM permissions %s %s LIMIT ? OFFSET ?`, permissionColumns, where, orderBy)
	result, err := queryPermissions(ctx, r.db, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM permissions `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта прав: %w", err)
	}
	return result, total, nil
}

// All возвращает все права.
func (r *permissionRepo) All(ctx context.Context) ([]model.Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions ORDER BY sort, created_at`, permissionColumns)
	return queryPermissions(ctx, r.db, query)
}

// Actions возвращает различные action по алфавиту.
func (r *permissionRepo) Actions(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "action")
}

// Resources возвращает различные resource по алфавиту.
func (r *permissionRepo) Resources(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "resource")
}

// distinct — column только из кода пакета, не из запроса.
func (r *permissionRepo) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM permissions ORDER BY %[1]s`, column)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса %s: %w", column, err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("ошибка сканирования %s: %w", column, err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// Delete удаляет право; у потомков parent_id становится NULL.
func (r *permissionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления права: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
