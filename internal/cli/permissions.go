package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// permissionFlags — поля права из флагов create и update.
type permissionFlags struct {
	in          model.PermissionInput
	parentID    string
	description string
}

func (f *permissionFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.in.Name, "name", "n", "", "название права")
	fl.StringVarP(&f.in.Type, "type", "t", "", "тип: menu, button, api")
	fl.StringVarP(&f.in.Action, "action", "a", "", "действие (read, create...)")
	fl.StringVarP(&f.in.Resource, "resource", "r", "", "ресурс")
	fl.StringVar(&f.parentID, "parent", "", "ID родителя в дереве")
	fl.StringVar(&f.in.Path, "path", "", "путь страницы (для menu)")
	fl.StringVar(&f.in.Icon, "icon", "", "иконка")
	fl.IntVar(&f.in.Sort, "sort", 0, "порядок сортировки")
	fl.StringVarP(&f.description, "description", "d", "", "описание")
}

// apply переносит заданные флаги в in.
func (f *permissionFlags) apply(cmd *cobra.Command, in *model.PermissionInput) {
	fl := cmd.Flags()
	if fl.Changed("name") {
		in.Name = f.in.Name
	}
	if fl.Changed("type") {
		in.Type = f.in.Type
	}
	if fl.Changed("action") {
		in.Action = f.in.Action
	}
	if fl.Changed("resource") {
		in.Resource = f.in.Resource
	}
	if fl.Changed("parent") {
		in.ParentID = optional(f.parentID)
	}
	if fl.Changed("path") {
		in.Path = f.in.Path
	}
	if fl.Changed("icon") {
		in.Icon = f.in.Icon
	}
	if fl.Changed("sort") {
		in.Sort = f.in.Sort
	}
	if fl.Changed("description") {
		in.Description = optional(f.description)
	}
}

func newPermissionCreateCommand(opts *rootOptions) *cobra.Command {
	var f permissionFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать право",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in model.PermissionInput
			f.apply(cmd, &in)
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				p, err := a.api.CreatePermission(ctx, in)
				if err != nil {
					return err
				}
				return done(cmd, "已创建权限: %s:%s (%s)", p.Action, p.Resource, p.ID)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newPermissionUpdateCommand(opts *rootOptions) *cobra.Command {
	var f permissionFlags
	cmd := &cobra.Command{
		Use:   "update PERMISSION_ID",
		Short: "Изменить право; незаданные поля сохраняются",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				cur, err := a.api.PermissionDetail(ctx, args[0])
				if err != nil {
					return err
				}
				in := model.PermissionInput{
					Name:        cur.Name,
					Type:        cur.Type,
					Action:      cur.Action,
					Resource:    cur.Resource,
					ParentID:    cur.ParentID,
					Path:        cur.Path,
					Icon:        cur.Icon,
					Sort:        cur.Sort,
					Description: cur.Description,
				}
				f.apply(cmd, &in)
				p, err := a.api.UpdatePermission(ctx, args[0], in)
				if err != nil {
					return err
				}
				return done(cmd, "已更新权限: %s (%s:%s)", p.Name, p.Action, p.Resource)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newPermissionDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PERMISSION_ID",
		Short: "Удалить право",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.DeletePermission(ctx, args[0]); err != nil {
					return err
				}
				return done(cmd, "权限已删除")
			})
		},
	}
}

func newPermissionShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show PERMISSION_ID",
		Short: "Право по ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				p, err := a.api.PermissionDetail(ctx, args[0])
				if err != nil {
					return err
				}
				return renderTable(cmd.OutOrStdout(), []string{"字段", "值"}, [][]string{
					{"ID", p.ID},
					{"权限名称", p.Name},
					{"类型", p.Type},
					{"操作", p.Action},
					{"资源", p.Resource},
					{"父级", deref(p.ParentID)},
					{"路径", p.Path},
					{"排序", itoa(p.Sort)},
					{"描述", deref(p.Description)},
				})
			})
		},
	}
}

func newPermissionSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Поиск прав по названию, action и resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				perms, err := a.api.SearchPermissions(ctx, args[0])
				if err != nil {
					return err
				}
				return printPermissions(cmd, perms)
			})
		},
	}
}

func newPermissionByActionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "by-action ACTION",
		Short: "Права с указанным action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				perms, err := a.api.PermissionsByAction(ctx, args[0])
				if err != nil {
					return err
				}
				return printPermissions(cmd, perms)
			})
		},
	}
}

func newPermissionByResourceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "by-resource RESOURCE",
		Short: "Права над указанным resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				perms, err := a.api.PermissionsByResource(ctx, args[0])
				if err != nil {
					return err
				}
				return printPermissions(cmd, perms)
			})
		},
	}
}

func newPermissionMetaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Все различные action и resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				actions, err := a.api.PermissionActions(ctx)
				if err != nil {
					return err
				}
				resources, err := a.api.PermissionResources(ctx)
				if err != nil {
					return err
				}
				if err := done(cmd, "操作: %v", actions); err != nil {
					return err
				}
				return done(cmd, "资源: %v", resources)
			})
		},
	}
}

func newPermissionTreeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Полное дерево прав",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				tree, err := a.api.PermissionTree(ctx)
				if err != nil {
					return err
				}
				return printTree(cmd.OutOrStdout(), tree, 0)
			})
		},
	}
}
