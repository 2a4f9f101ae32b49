package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// roleFlags — поля роли из флагов create и update.
type roleFlags struct {
	name, code, description string
}

func (f *roleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "название роли")
	cmd.Flags().StringVarP(&f.code, "code", "c", "", "код роли")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "описание")
}

// apply переносит заданные флаги в in.
func (f *roleFlags) apply(cmd *cobra.Command, in *model.RoleInput) {
	if cmd.Flags().Changed("name") {
		in.Name = f.name
	}
	if cmd.Flags().Changed("code") {
		in.Code = f.code
	}
	if cmd.Flags().Changed("description") {
		in.Description = optional(f.description)
	}
}

func newRoleCreateCommand(opts *rootOptions) *cobra.Command {
	var f roleFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать роль",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in model.RoleInput
			f.apply(cmd, &in)
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				role, err := a.api.CreateRole(ctx, in)
				if err != nil {
					return err
				}
				return done(cmd, "已创建角色: %s (%s)", role.Code, role.ID)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newRoleUpdateCommand(opts *rootOptions) *cobra.Command {
	var f roleFlags
	cmd := &cobra.Command{
		Use:   "update ROLE_ID",
		Short: "Изменить роль; незаданные поля сохраняются",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				current, err := a.api.RoleDetail(ctx, args[0])
				if err != nil {
					return err
				}
				in := model.RoleInput{Name: current.Name, Code: current.Code, Description: current.Description}
				f.apply(cmd, &in)
				role, err := a.api.UpdateRole(ctx, args[0], in)
				if err != nil {
					return err
				}
				return done(cmd, "已更新角色: %s (%s)", role.Code, role.Name)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func newRoleDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ROLE_ID",
		Short: "Удалить роль (системные не удаляются)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.DeleteRole(ctx, args[0]); err != nil {
					return err
				}
				return done(cmd, "角色已删除")
			})
		},
	}
}

func newRoleShowCommand(opts *rootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "show [ROLE_ID]",
		Short: "Роль с правами; --code ищет по коду",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (code == "") {
				return errors.New("укажите ROLE_ID или --code")
			}
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				} else {
					role, err := a.api.RoleByCode(ctx, code)
					if err != nil {
						return err
					}
					id = role.ID
				}
				detail, err := a.api.RoleDetail(ctx, id)
				if err != nil {
					return err
				}
				if err := printRoles(cmd, []model.Role{detail.Role}); err != nil {
					return err
				}
				return printPermissions(cmd, detail.Permissions)
			})
		},
	}
	cmd.Flags().StringVarP(&code, "code", "c", "", "код роли")
	return cmd
}

func newRoleAssignPermissionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-permissions ROLE_ID PERMISSION_ID...",
		Short: "Добавить роли права",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.AssignPermissions(ctx, args[0], args[1:]); err != nil {
					return err
				}
				return done(cmd, "已分配 %d 个权限", len(args)-1)
			})
		},
	}
}

func newRolePermissionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "permissions ROLE_ID",
		Short: "Права роли",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				perms, err := a.api.RolePermissions(ctx, args[0])
				if err != nil {
					return err
				}
				return printPermissions(cmd, perms)
			})
		},
	}
}

func newRoleRemovePermissionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-permission ROLE_ID PERMISSION_ID",
		Short: "Снять право с роли",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.RemovePermission(ctx, args[0], args[1]); err != nil {
					return err
				}
				return done(cmd, "权限已移除")
			})
		},
	}
}
