package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/apiclient"
	"github.com/bigkaa/goartstore/admin-console/internal/datatable"
	"github.com/bigkaa/goartstore/admin-console/internal/pages"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/session"
	"github.com/bigkaa/goartstore/admin-console/internal/ui/tui"
)

// toastBuffer — очередь уведомлений для строки статуса TUI.
const toastBuffer = 16

func newUsersCommand(opts *rootOptions) *cobra.Command {
	cmd := newPageCommand(opts, "users", "Таблица пользователей", func(c *apiclient.Client) pages.Page {
		return pages.Users(c)
	})
	cmd.AddCommand(
		newUserCreateCommand(opts),
		newUserDeleteCommand(opts),
		newUserStatusCommand(opts),
		newUserAssignRoleCommand(opts),
		newUserSetRolesCommand(opts),
		newUserRemoveRoleCommand(opts),
		newUserRolesCommand(opts),
		newUserPermissionsCommand(opts),
		newUserCheckPermissionCommand(opts),
		newUserCheckRoleCommand(opts),
	)
	return cmd
}

func newRolesCommand(opts *rootOptions) *cobra.Command {
	cmd := newPageCommand(opts, "roles", "Таблица ролей", func(c *apiclient.Client) pages.Page {
		return pages.Roles(c)
	})
	cmd.AddCommand(
		newRoleCreateCommand(opts),
		newRoleUpdateCommand(opts),
		newRoleDeleteCommand(opts),
		newRoleShowCommand(opts),
		newRoleAssignPermissionsCommand(opts),
		newRolePermissionsCommand(opts),
		newRoleRemovePermissionCommand(opts),
	)
	return cmd
}

func newPermissionsCommand(opts *rootOptions) *cobra.Command {
	cmd := newPageCommand(opts, "permissions", "Дерево прав", func(c *apiclient.Client) pages.Page {
		return pages.Permissions(c)
	})
	cmd.AddCommand(
		newPermissionCreateCommand(opts),
		newPermissionUpdateCommand(opts),
		newPermissionDeleteCommand(opts),
		newPermissionShowCommand(opts),
		newPermissionSearchCommand(opts),
		newPermissionByActionCommand(opts),
		newPermissionByResourceCommand(opts),
		newPermissionMetaCommand(opts),
		newPermissionTreeCommand(opts),
	)
	return cmd
}

func newPageCommand(opts *rootOptions, use, short string, build func(*apiclient.Client) pages.Page) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runPage(cmd, build)
		},
	}
}

// runPage открывает страницу: интерактивно в терминале, иначе печатает
// первую страницу таблицы.
func (o *rootOptions) runPage(cmd *cobra.Command, build func(*apiclient.Client) pages.Page) error {
	out := cmd.OutOrStdout()
	interactive := !o.plain && isTerminal(out)

	toasts := make(chan request.Toast, toastBuffer)
	notifier := printNotifier(cmd.ErrOrStderr())
	if interactive {
		// Переполненная очередь теряет уведомление, а не блокирует запрос
		notifier = request.NotifierFunc(func(t request.Toast) {
			select {
			case toasts <- t:
			default:
			}
		})
	}

	return o.withApp(cmd, notifier, func(ctx context.Context, a *app) error {
		page := build(a.api)
		if redirect, ok := session.CheckRoute(page.Path, a.session.IsAuthenticated(ctx)); !ok {
			return fmt.Errorf("%w, выполните login (%s)", session.ErrNotAuthenticated, redirect)
		}

		table := datatable.New(page.TableConfig(o.cfg.DefaultPageSize))
		if interactive {
			return tui.Run(ctx, page, table, toasts)
		}
		return tui.Plain(ctx, out, page, table)
	})
}
