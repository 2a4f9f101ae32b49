// roles.go — управление ролями и их правами.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// RoleService — роли RBAC.
type RoleService struct {
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	logger      *slog.Logger
}

// NewRoleService создаёт сервис ролей.
func NewRoleService(roles repository.RoleRepository, permissions repository.PermissionRepository, logger *slog.Logger) *RoleService {
	return &RoleService{
		roles:       roles,
		permissions: permissions,
		logger:      logger.With(slog.String("component", "role_service")),
	}
}

// List возвращает страницу ролей.
func (s *RoleService) List(ctx context.Context, q ListQuery) (*model.RoleList, error) {
	start := time.Now()
	items, total, err := s.roles.Search(ctx, q.params())
	if err != nil {
		return nil, fmt.Errorf("поиск ролей: %w", err)
	}
	observeSearch(s.logger, "roles", start, total, len(items))
	return &model.RoleList{Roles: items, Total: total}, nil
}

// Create создаёт роль. Роли, созданные через API, не системные.
func (s *RoleService) Create(ctx context.Context, in model.RoleInput) (*model.Role, error) {
	role := &model.Role{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Code:        in.Code,
		Description: in.Description,
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, conflict(err)
	}
	s.logger.Info("Роль создана", slog.String("role_id", role.ID), slog.String("code", role.Code))
	return role, nil
}

// Update изменяет роль. Код системной роли неизменен.
func (s *RoleService) Update(ctx context.Context, in model.RoleInput) (*model.Role, error) {
	role, err := s.roles.GetByID(ctx, in.ID)
	if err != nil {
		return nil, notFound(err)
	}
	if role.IsSystem && role.Code != in.Code {
		return nil, ErrSystemRole
	}

	role.Name = in.Name
	role.Code = in.Code
	role.Description = in.Description
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, conflict(err)
	}
	return role, nil
}

// Delete удаляет роль. Системные роли удалить нельзя.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("Роль удалена", slog.String("role_id", id))
	return nil
}

// Detail возвращает роль с правами.
func (s *RoleService) Detail(ctx context.Context, id string) (*model.RoleDetail, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	perms, err := s.roles.Permissions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RoleDetail{Role: *role, Permissions: perms}, nil
}

// ByCode ищет роль по коду.
func (s *RoleService) ByCode(ctx context.Context, code string) (*model.Role, error) {
	role, err := s.roles.GetByCode(ctx, code)
	if err != nil {
		return nil, notFound(err)
	}
	return role, nil
}

// AssignPermissions добавляет права к уже назначенным.
func (s *RoleService) AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return notFound(err)
	}
	current, err := s.roles.Permissions(ctx, roleID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(current)+len(permissionIDs))
	for _, p := range current {
		ids = append(ids, p.ID)
	}
	for _, id := range permissionIDs {
		if _, err := s.permissions.GetByID(ctx, id); err != nil {
			return notFound(err)
		}
		ids = append(ids, id)
	}
	return s.roles.SetPermissions(ctx, roleID, ids)
}

// Permissions — права роли.
func (s *RoleService) Permissions(ctx context.Context, roleID string) ([]model.Permission, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, notFound(err)
	}
	return s.roles.Permissions(ctx, roleID)
}

// RemovePermission снимает право с роли.
func (s *RoleService) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	return notFound(s.roles.RemovePermission(ctx, roleID, permissionID))
}
