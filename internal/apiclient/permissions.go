package apiclient

import (
	"context"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// PermissionQuery — параметры списка прав.
type PermissionQuery struct {
	ListQuery
	Action   string `json:"action,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// ListPermissions возвращает страницу прав.
func (c *Client) ListPermissions(ctx context.Context, q PermissionQuery) (*model.PermissionList, error) {
	return ptr[model.PermissionList](get[model.PermissionList](ctx, c, "/api/permissions", q))
}

// CreatePermission создаёт право.
func (c *Client) CreatePermission(ctx context.Context, in model.PermissionInput) (*model.Permission, error) {
	in.ID = ""
	return ptr[model.Permission](post[model.Permission](ctx, c, "/api/permissions", in))
}

// UpdatePermission изменяет право id.
func (c *Client) UpdatePermission(ctx context.Context, id string, in model.PermissionInput) (*model.Permission, error) {
	in.ID = id
	return ptr[model.Permission](put[model.Permission](ctx, c, "/api/permissions", in))
}

// DeletePermission удаляет право.
func (c *Client) DeletePermission(ctx context.Context, id string) error {
	return del(ctx, c, "/api/permissions", map[string]string{"id": id}, nil)
}

// SearchPermissions ищет права по ключевому слову.
func (c *Client) SearchPermissions(ctx context.Context, keyword string) ([]model.Permission, error) {
	return get[[]model.Permission](ctx, c, "/api/permissions/search", map[string]string{"keyword": keyword})
}

// PermissionActions возвращает все различные action.
func (c *Client) PermissionActions(ctx context.Context) ([]string, error) {
	return get[[]string](ctx, c, "/api/permissions/actions", nil)
}

// PermissionResources возвращает все различные resource.
func (c *Client) PermissionResources(ctx context.Context) ([]string, error) {
	return get[[]string](ctx, c, "/api/permissions/resources", nil)
}

// PermissionsByAction возвращает права с указанным action.
func (c *Client) PermissionsByAction(ctx context.Context, action string) ([]model.Permission, error) {
	return get[[]model.Permission](ctx, c, "/api/permissions/by-action", map[string]string{"action": action})
}

// PermissionsByResource возвращает права над указанным resource.
func (c *Client) PermissionsByResource(ctx context.Context, resource string) ([]model.Permission, error) {
	return get[[]model.Permission](ctx, c, "/api/permissions/by-resource", map[string]string{"resource": resource})
}

// PermissionDetail возвращает право по id.
func (c *Client) PermissionDetail(ctx context.Context, id string) (*model.Permission, error) {
	return ptr[model.Permission](get[model.Permission](ctx, c, "/api/permissions/detail", map[string]string{"id": id}))
}

// PermissionTree возвращает дерево прав (меню).
func (c *Client) PermissionTree(ctx context.Context) ([]*model.Permission, error) {
	return get[[]*model.Permission](ctx, c, "/api/permissions/tree", nil)
}
