package pages

import (
	"context"
	"strings"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// UsersAPI — endpoints страницы пользователей.
type UsersAPI interface {
	ListUsers(ctx context.Context, q apiclient.UserQuery) (*model.UserList, error)
}

// Users — страница «用户管理».
func Users(api UsersAPI) Page {
	return Page{
		Path:  "/users",
		Title: "用户管理",
		Columns: []datatable.Column{
			{Key: "name", Title: "用户", DataIndex: "name", Width: 240, Searchable: true,
				SearchProps: datatable.SearchProps{Placeholder: "搜索用户..."},
				Render: func(v any, row datatable.Row, _ int) string {
					return datatable.FormatValue(v) + " <" + datatable.FormatValue(row["email"]) + ">"
				}},
			{Key: "roles", Title: "角色", DataIndex: "roles", Width: 160, Render: orDash},
			{Key: "isActive", Title: "状态", DataIndex: "isActive", Width: 80, Align: datatable.AlignCenter,
				Searchable: true, SearchType: datatable.SearchSelect,
				SearchProps: datatable.SearchProps{Options: []datatable.Option{
					{Label: "活跃", Value: true},
					{Label: "禁用", Value: false},
				}},
				Render: func(v any, _ datatable.Row, _ int) string {
					if b, _ := v.(bool); b {
						return "活跃"
					}
					return "禁用"
				}},
			{Key: "lastLoginAt", Title: "最后登录", DataIndex: "lastLoginAt", Width: 180, Sortable: true, Render: formatDate},
			dateColumn("createdAt", "创建时间"),
		},
		Load: loadWith(userQuery, func(ctx context.Context, q apiclient.UserQuery) ([]datatable.Row, int, error) {
			res, err := api.ListUsers(ctx, q)
			if err != nil {
				return nil, 0, err
			}
			rows := make([]datatable.Row, len(res.Users))
			for i, u := range res.Users {
				rows[i] = UserRow(u)
			}
			return rows, res.Total, nil
		}),
	}
}

func userQuery(params datatable.LoadParams) apiclient.UserQuery {
	q := apiclient.UserQuery{ListQuery: listQuery(params, "name")}
	if b, ok := params.SearchValues["isActive"].(bool); ok {
		q.IsActive = &b
	}
	return q
}

// UserRow — строка таблицы для пользователя.
func UserRow(u model.User) datatable.Row {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, r.Name)
	}
	return datatable.Row{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"roles":       strings.Join(roles, ", "),
		"isActive":    u.IsActive,
		"loginCount":  u.LoginCount,
		"lastLoginAt": timePtr(u.LastLoginAt),
		"createdAt":   u.CreatedAt,
		"updatedAt":   u.UpdatedAt,
	}
}
