package pages

import (
	"context"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// PermissionsAPI — endpoints страницы прав.
type PermissionsAPI interface {
	ListPermissions(ctx context.Context, q apiclient.PermissionQuery) (*model.PermissionList, error)
}

var permissionTypes = map[string]string{
	model.PermissionTypeMenu:   "菜单",
	model.PermissionTypeButton: "按钮",
	model.PermissionTypeAPI:    "接口",
}

// Permissions — страница «权限管理». Строки страницы собираются в дерево
// по parentId; родитель с другой страницы делает строку корнем.
func Permissions(api PermissionsAPI) Page {
	return Page{
		Path:  "/permissions",
		Title: "权限管理",
		Tree:  true,
		Columns: []datatable.Column{
			{Key: "name", Title: "权限名称", DataIndex: "name", Width: 200, Searchable: true},
			{Key: "type", Title: "类型", DataIndex: "type", Width: 80, Align: datatable.AlignCenter,
				Render: func(v any, _ datatable.Row, _ int) string {
					if s, ok := permissionTypes[datatable.FormatValue(v)]; ok {
						return s
					}
					return orDash(v, nil, 0)
				}},
			{Key: "action", Title: "操作", DataIndex: "action", Width: 120, Searchable: true},
			{Key: "resource", Title: "资源", DataIndex: "resource", Width: 150, Searchable: true},
			{Key: "description", Title: "描述", DataIndex: "description", Width: 250, Render: orDash},
			dateColumn("createdAt", "创建时间"),
			dateColumn("updatedAt", "更新时间"),
		},
		Load: loadWith(permissionQuery, func(ctx context.Context, q apiclient.PermissionQuery) ([]datatable.Row, int, error) {
			res, err := api.ListPermissions(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			rows := make([]datatable.Row, len(res.Permissions))
			for i, p := range res.Permissions {
				rows[i] = PermissionRow(p)
			}
			return rows, res.Total, nil
		}),
	}
}

func permissionQuery(params datatable.LoadParams) apiclient.PermissionQuery {
	return apiclient.PermissionQuery{
		ListQuery: listQuery(params, "name"),
		Action:    textValue(params.SearchValues["action"]),
		Resource:  textValue(params.SearchValues["resource"]),
	}
}

// PermissionRow — строка таблицы для права.
func PermissionRow(p model.Permission) datatable.Row {
	return datatable.Row{
		"id":          p.ID,
		"name":        p.Name,
		"type":        p.Type,
		"action":      p.Action,
		"resource":    p.Resource,
		"parentId":    strPtr(p.ParentID),
		"path":        p.Path,
		"sort":        p.Sort,
		"status":      p.Status,
		"description": strPtr(p.Description),
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
}
