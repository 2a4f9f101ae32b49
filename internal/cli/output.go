package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// withSession — withApp для команд, которым нужна сессия.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	return o.withApp(cmd, printNotifier(cmd.ErrOrStderr()), func(ctx context.Context, a *app) error {
		if err := a.session.Require(ctx); err != nil {
			return err
		}
		return fn(ctx, a)
	})
}

// done печатает строку результата команды.
func done(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return err
}

// renderTable печатает таблицу с рамкой.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func printRoles(cmd *cobra.Command, roles []model.Role) error {
	rows := make([][]string, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, []string{r.ID, r.Name, r.Code, yesNo(r.IsSystem), deref(r.Description)})
	}
	return renderTable(cmd.OutOrStdout(), []string{"ID", "角色名称", "角色编码", "系统角色", "描述"}, rows)
}

func printPermissions(cmd *cobra.Command, perms []model.Permission) error {
	rows := make([][]string, 0, len(perms))
	for _, p := range perms {
		rows = append(rows, []string{p.ID, p.Name, p.Type, p.Action, p.Resource})
	}
	return renderTable(cmd.OutOrStdout(), []string{"ID", "权限名称", "类型", "操作", "资源"}, rows)
}

// printTree печатает дерево прав с отступом по уровню.
func printTree(w io.Writer, nodes []*model.Permission, depth int) error {
	for _, n := range nodes {
		if _, err := fmt.Fprintf(w, "%s%s (%s:%s)\n", strings.Repeat("  ", depth), n.Name, n.Action, n.Resource); err != nil {
			return err
		}
		if err := printTree(w, n.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "是"
	}
	return "否"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// optional — nil для пустой строки.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
