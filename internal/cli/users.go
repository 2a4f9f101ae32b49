package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

func newUserCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		req      model.CreateUserRequest
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать пользователя",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.promptIfEmpty(cmd, &req.Email, "邮箱: "); err != nil {
				return err
			}
			if err := opts.promptIfEmpty(cmd, &req.Password, "密码: "); err != nil {
				return err
			}
			if req.Name == "" {
				req.Name = req.Email
			}
			if inactive {
				active := false
				req.IsActive = &active
			}
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				user, err := a.api.CreateUser(ctx, req)
				if err != nil {
					return err
				}
				return done(cmd, "已创建用户: %s (%s)", user.Email, user.ID)
			})
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email пользователя")
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "имя (по умолчанию email)")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "начальный пароль")
	cmd.Flags().StringSliceVar(&req.RoleIDs, "role", nil, "ID роли (можно повторять)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "создать отключённым")
	return cmd
}

func newUserDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID...",
		Short: "Удалить пользователей",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.DeleteUsers(ctx, args); err != nil {
					return err
				}
				return done(cmd, "已删除 %d 个用户", len(args))
			})
		},
	}
}

func newUserStatusCommand(opts *rootOptions) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "status USER_ID...",
		Short: "Включить или отключить пользователей (--active=false)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.ToggleUserStatus(ctx, args, active); err != nil {
					return err
				}
				state := "禁用"
				if active {
					state = "启用"
				}
				return done(cmd, "已%s %d 个用户", state, len(args))
			})
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "новое состояние учётных записей")
	return cmd
}

func newUserAssignRoleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-role USER_ID ROLE_ID",
		Short: "Назначить пользователю роль",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.AssignRole(ctx, args[0], args[1]); err != nil {
					return err
				}
				return done(cmd, "角色已分配")
			})
		},
	}
}

func newUserSetRolesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-roles USER_ID [ROLE_ID...]",
		Short: "Заменить набор ролей пользователя",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.AssignRoles(ctx, args[0], args[1:]); err != nil {
					return err
				}
				return done(cmd, "角色已更新: %d 个", len(args)-1)
			})
		},
	}
}

func newUserRemoveRoleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-role USER_ID ROLE_ID",
		Short: "Снять роль с пользователя",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				if err := a.api.RemoveRole(ctx, args[0], args[1]); err != nil {
					return err
				}
				return done(cmd, "角色已移除")
			})
		},
	}
}

func newUserRolesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles USER_ID",
		Short: "Роли пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				roles, err := a.api.UserRoles(ctx, args[0])
				if err != nil {
					return err
				}
				return printRoles(cmd, roles)
			})
		},
	}
}

func newUserPermissionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "permissions USER_ID",
		Short: "Итоговые права пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				perms, err := a.api.UserPermissions(ctx, args[0])
				if err != nil {
					return err
				}
				return printPermissions(cmd, perms)
			})
		},
	}
}

func newUserCheckPermissionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-permission USER_ID ACTION RESOURCE",
		Short: "Проверить право action:resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				ok, err := a.api.CheckPermission(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return done(cmd, "%s:%s %s", args[1], args[2], yesNo(ok))
			})
		},
	}
}

func newUserCheckRoleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-role USER_ID ROLE_CODE",
		Short: "Проверить наличие роли",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, a *app) error {
				ok, err := a.api.CheckRole(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return done(cmd, "%s %s", args[1], yesNo(ok))
			})
		},
	}
}
