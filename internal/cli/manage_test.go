package cli

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

var (
	createdIDPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)
	whoamiIDPattern  = regexp.MustCompile(`ID:\s+(\S+)`)
)

// createdID извлекает ID из строки «已创建…: ... (id)».
func createdID(t *testing.T, out string) string {
	t.Helper()
	m := createdIDPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("нет ID в выводе: %q", out)
	}
	return m[1]
}

// expect выполняет команду и проверяет, что вывод содержит все want.
func (e *testEnv) expect(t *testing.T, args []string, want ...string) string {
	t.Helper()
	out := e.mustRun(t, args...)
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("%v: нет %q в выводе:\n%s", args, w, out)
		}
	}
	return out
}

func TestRolesAndPermissionsCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")

	roleID := createdID(t, env.expect(t, []string{"roles", "create", "-n", "审计", "-c", "auditor", "-d", "只读审计"}, "已创建角色: auditor"))
	env.expect(t, []string{"roles", "update", roleID, "-n", "审计员"}, "已更新角色: auditor (审计员)")

	permID := createdID(t, env.expect(t,
		[]string{"permissions", "create", "-n", "导出报表", "-t", "button", "-a", "export", "-r", "reports"},
		"已创建权限: export:reports"))
	env.expect(t, []string{"permissions", "update", permID, "--sort", "5", "-d", "导出"}, "已更新权限: 导出报表 (export:reports)")
	env.expect(t, []string{"permissions", "show", permID}, "导出报表", "reports", "导出")

	env.expect(t, []string{"roles", "assign-permissions", roleID, permID}, "已分配 1 个权限")
	env.expect(t, []string{"roles", "permissions", roleID}, "导出报表")
	env.expect(t, []string{"roles", "show", "--code", "auditor"}, "审计员", "只读审计", "导出报表")

	env.expect(t, []string{"roles", "remove-permission", roleID, permID}, "权限已移除")
	if out := env.mustRun(t, "roles", "show", roleID); strings.Contains(out, "导出报表") {
		t.Errorf("право не снято:\n%s", out)
	}

	env.expect(t, []string{"permissions", "search", "导出"}, "导出报表")
	env.expect(t, []string{"permissions", "by-action", "export"}, "reports")
	env.expect(t, []string{"permissions", "by-resource", "reports"}, "export")
	env.expect(t, []string{"permissions", "meta"}, "export", "reports", "read")
	env.expect(t, []string{"permissions", "tree"}, "系统管理 (menu:system)", "  用户管理 (menu:users)", "    查看用户 (read:users)")

	env.expect(t, []string{"permissions", "delete", permID}, "权限已删除")
	_, _, err := env.run(t, "permissions", "show", permID)
	var reqErr *request.Error
	if !errors.As(err, &reqErr) || reqErr.Code != request.CodeDataNotFound {
		t.Errorf("show удалённого права: %v", err)
	}

	env.expect(t, []string{"roles", "delete", roleID}, "角色已删除")

	if _, _, err := env.run(t, "roles", "show"); err == nil {
		t.Error("roles show без ROLE_ID и --code: ожидалась ошибка")
	}
}

func TestUsersCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")

	m := whoamiIDPattern.FindStringSubmatch(env.mustRun(t, "whoami"))
	if m == nil {
		t.Fatal("нет ID в выводе whoami")
	}
	adminID := m[1]

	roleID := createdID(t, env.mustRun(t, "roles", "create", "-n", "审计", "-c", "auditor"))
	userID := createdID(t, env.expect(t,
		[]string{"users", "create", "-e", "op@example.com", "-p", "secret1", "--inactive"},
		"已创建用户: op@example.com"))

	env.expect(t, []string{"users", "status", "--active=true", userID}, "已启用 1 个用户")
	env.expect(t, []string{"users", "status", "--active=false", userID}, "已禁用 1 个用户")

	env.expect(t, []string{"users", "assign-role", userID, roleID}, "角色已分配")
	env.expect(t, []string{"users", "roles", userID}, "auditor", "审计")
	env.expect(t, []string{"users", "check-role", userID, "auditor"}, "auditor 是")

	env.expect(t, []string{"users", "set-roles", userID, roleID}, "角色已更新: 1 个")
	env.expect(t, []string{"users", "remove-role", userID, roleID}, "角色已移除")
	env.expect(t, []string{"users", "check-role", userID, "auditor"}, "auditor 否")

	env.expect(t, []string{"users", "permissions", adminID}, "删除角色", "查看用户")
	env.expect(t, []string{"users", "check-permission", adminID, "delete", "roles"}, "delete:roles 是")
	env.expect(t, []string{"users", "check-permission", userID, "delete", "roles"}, "delete:roles 否")

	env.expect(t, []string{"users", "delete", userID}, "已删除 1 个用户")
	_, _, err := env.run(t, "users", "roles", userID)
	var reqErr *request.Error
	if !errors.As(err, &reqErr) || reqErr.Code != request.CodeDataNotFound {
		t.Errorf("roles удалённого пользователя: %v", err)
	}
}

func TestRefreshAndHealth(t *testing.T) {
	env := newTestEnv(t)

	env.expect(t, []string{"health"}, "admin-console ok")

	if _, _, err := env.run(t, "refresh"); err == nil {
		t.Error("refresh без входа: ожидалась ошибка")
	}

	env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")
	env.expect(t, []string{"refresh"}, "令牌已刷新: admin@example.com")
	env.expect(t, []string{"whoami"}, "admin@example.com")
}

func TestManageCommands_RequireSession(t *testing.T) {
	env := newTestEnv(t)
	for _, args := range [][]string{
		{"users", "delete", "u1"},
		{"roles", "create", "-n", "x", "-c", "x"},
		{"permissions", "tree"},
	} {
		if _, _, err := env.run(t, args...); err == nil || !strings.Contains(err.Error(), "未登录") {
			t.Errorf("%v без входа: %v", args, err)
		}
	}
}
