package pages

import (
	"context"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// RolesAPI — endpoints страницы ролей.
type RolesAPI interface {
	ListRoles(ctx context.Context, q apiclient.ListQuery) (*model.RoleList, error)
}

// Roles — страница «角色管理».
func Roles(api RolesAPI) Page {
	return Page{
		Path:  "/roles",
		Title: "角色管理",
		Columns: []datatable.Column{
			{Key: "name", Title: "角色名称", DataIndex: "name", Width: 200, Searchable: true},
			{Key: "code", Title: "角色代码", DataIndex: "code", Width: 150},
			{Key: "description", Title: "角色描述", DataIndex: "description", Width: 250, Render: orDash},
			{Key: "isSystem", Title: "系统角色", DataIndex: "isSystem", Width: 100, Align: datatable.AlignCenter, Render: yesNo},
			dateColumn("createdAt", "创建时间"),
			dateColumn("updatedAt", "更新时间"),
		},
		Load: loadWith(func(p datatable.LoadParams) apiclient.ListQuery {
			return listQuery(p, "name")
		}, func(ctx context.Context, q apiclient.ListQuery) ([]datatable.Row, int, error) {
			res, err := api.ListRoles(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			rows := make([]datatable.Row, len(res.Roles))
			for i, r := range res.Roles {
				rows[i] = RoleRow(r)
			}
			return rows, res.Total, nil
		}),
	}
}

// RoleRow — строка таблицы для роли.
func RoleRow(r model.Role) datatable.Row {
	return datatable.Row{
		"id":          r.ID,
		"name":        r.Name,
		"code":        r.Code,
		"description": strPtr(r.Description),
		"isSystem":    r.IsSystem,
		"createdAt":   r.CreatedAt,
		"updatedAt":   r.UpdatedAt,
	}
}
