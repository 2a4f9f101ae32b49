package apiclient

import (
	"context"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// ListRoles возвращает страницу ролей.
func (c *Client) ListRoles(ctx context.Context, q ListQuery) (*model.RoleList, error) {
	return ptr[model.RoleList](get[model.RoleList](ctx, c, "/api/roles", q))
}

// CreateRole создаёт роль.
func (c *Client) CreateRole(ctx context.Context, in model.RoleInput) (*model.Role, error) {
	in.ID = ""
	return ptr[model.Role](post[model.Role](ctx, c, "/api/roles", in))
}

// UpdateRole изменяет роль id.
func (c *Client) UpdateRole(ctx context.Context, id string, in model.RoleInput) (*model.Role, error) {
	in.ID = id
	return ptr[model.Role](put[model.Role](ctx, c, "/api/roles", in))
}

// DeleteRole удаляет роль. Системные роли сервер не удаляет (BUSINESS_RULE_VIOLATION).
func (c *Client) DeleteRole(ctx context.Context, id string) error {
	return del(ctx, c, "/api/roles", map[string]string{"id": id}, nil)
}

// RoleDetail возвращает роль с её правами.
func (c *Client) RoleDetail(ctx context.Context, id string) (*model.RoleDetail, error) {
	return ptr[model.RoleDetail](get[model.RoleDetail](ctx, c, "/api/roles/detail", map[string]string{"id": id}))
}

// RoleByCode ищет роль по коду.
func (c *Client) RoleByCode(ctx context.Context, code string) (*model.Role, error) {
	return ptr[model.Role](get[model.Role](ctx, c, "/api/roles/by-code", map[string]string{"code": code}))
}

// AssignPermissions добавляет роли права.
func (c *Client) AssignPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	_, err := post[struct{}](ctx, c, "/api/roles/assign-permissions",
		model.AssignPermissionsRequest{RoleID: roleID, PermissionIDs: permissionIDs})
	return err
}

// RolePermissions возвращает права роли.
func (c *Client) RolePermissions(ctx context.Context, roleID string) ([]model.Permission, error) {
	return get[[]model.Permission](ctx, c, "/api/roles/permissions", map[string]string{"roleId": roleID})
}

// RemovePermission снимает право с роли.
func (c *Client) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	return del(ctx, c, "/api/roles/remove-permission",
		map[string]string{"roleId": roleID, "permissionId": permissionID}, nil)
}
