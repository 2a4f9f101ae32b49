// seed.go — начальные данные dev API: системные роли, дерево прав
// и учётная запись администратора.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
)

// AdminRoleCode — системная роль администратора.
const AdminRoleCode = "admin"

// SeedConfig — учётная запись администратора.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string //nolint:gosec // G101: значение из окружения
	// HashCost — стоимость bcrypt (0 — bcrypt.DefaultCost)
	HashCost int
}

// seedMenu — разделы меню и их страницы.
var seedMenu = []struct {
	name, resource, path, icon string
}{
	{"用户管理", "users", "/users", "user"},
	{"角色管理", "roles", "/roles", "team"},
	{"权限管理", "permissions", "/permissions", "safety"},
}

var seedActions = []struct {
	action, name string
}{
	{"read", "查看"},
	{"create", "创建"},
	{"update", "编辑"},
	{"delete", "删除"},
}

// Seed заполняет пустую БД. Если роль admin уже есть, ничего не делает.
func Seed(
	ctx context.Context,
	cfg SeedConfig,
	users repository.UserRepository,
	roles repository.RoleRepository,
	permissions repository.PermissionRepository,
	logger *slog.Logger,
) error {
	if _, err := roles.GetByCode(ctx, AdminRoleCode); err == nil {
		logger.Debug("Начальные данные уже загружены")
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	admin := &model.Role{ID: uuid.NewString(), Name: "管理员", Code: AdminRoleCode, IsSystem: true, Description: strPtr("拥有全部权限")}
	user := &model.Role{ID: uuid.NewString(), Name: "普通用户", Code: DefaultRoleCode, IsSystem: true, Description: strPtr("只读访问")}
	for _, r := range []*model.Role{admin, user} {
		if err := roles.Create(ctx, r); err != nil {
			return fmt.Errorf("создание роли %s: %w", r.Code, err)
		}
	}

	var adminPerms, readPerms []string
	add := func(p *model.Permission) error {
		p.ID = uuid.NewString()
		p.Visible = true
		if err := permissions.Create(ctx, p); err != nil {
			return fmt.Errorf("создание права %s:%s: %w", p.Action, p.Resource, err)
		}
		adminPerms = append(adminPerms, p.ID)
		if p.Action == "read" || p.Type == model.PermissionTypeMenu {
			readPerms = append(readPerms, p.ID)
		}
		return nil
	}

	root := &model.Permission{Name: "系统管理", Type: model.PermissionTypeMenu, Action: "menu", Resource: "system", Path: "/dashboard", Icon: "setting", Sort: 1}
	if err := add(root); err != nil {
		return err
	}
	for i, m := range seedMenu {
		menu := &model.Permission{
			Name: m.name, Type: model.PermissionTypeMenu, Action: "menu", Resource: m.resource,
			ParentID: &root.ID, Path: m.path, Icon: m.icon, Sort: (i + 1) * 10,
		}
		if err := add(menu); err != nil {
			return err
		}
		for j, a := range seedActions {
			btn := &model.Permission{
				Name: a.name + strings.TrimSuffix(m.name, "管理"), Type: model.PermissionTypeButton,
				Action: a.action, Resource: m.resource, ParentID: &menu.ID, Sort: menu.Sort + j + 1,
			}
			if err := add(btn); err != nil {
				return err
			}
		}
	}

	if err := roles.SetPermissions(ctx, admin.ID, adminPerms); err != nil {
		return err
	}
	if err := roles.SetPermissions(ctx, user.ID, readPerms); err != nil {
		return err
	}

	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cost)
	if err != nil {
		return fmt.Errorf("хэширование пароля администратора: %w", err)
	}
	account := &model.User{
		ID:            uuid.NewString(),
		Email:         normalizeEmail(cfg.AdminEmail),
		Name:          "Administrator",
		PasswordHash:  string(hash),
		EmailVerified: true,
		IsActive:      true,
	}
	if err := users.Create(ctx, account); err != nil {
		return fmt.Errorf("создание администратора: %w", err)
	}
	if err := users.AddRole(ctx, account.ID, admin.ID); err != nil {
		return err
	}

	logger.Info("Начальные данные загружены",
		slog.String("admin_email", account.Email),
		slog.Int("permissions", len(adminPerms)),
	)
	return nil
}

func strPtr(s string) *string {
	return &s
}
