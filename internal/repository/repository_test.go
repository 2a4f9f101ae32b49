package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/admin-console/internal/database"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// newTestDB создаёт in-memory SQLite со схемой dev API.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Connect(context.Background(), database.MemoryPath, logger)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.MigrateSchema(db, logger); err != nil {
		t.Fatalf("MigrateSchema: %v", err)
	}
	return db
}

func createUser(t *testing.T, repo UserRepository, id, email, name string, active bool) *model.User {
	t.Helper()
	u := &model.User{ID: id, Email: email, Name: name, PasswordHash: "hash", IsActive: active}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s): %v", id, err)
	}
	return u
}

// --- Вспомогательные функции ---

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		sortBy, order, want string
	}{
		{"name", "asc", "ORDER BY name ASC"},
		{"createdAt", "DESC", "ORDER BY created_at DESC"},
		{"password_hash; DROP TABLE users", "asc", "ORDER BY created_at ASC"},
		{"", "", "ORDER BY created_at DESC"},
	}
	for _, tt := range tests {
		if got := buildOrderBy(tt.sortBy, tt.order, userSortColumns, "created_at"); got != tt.want {
			t.Errorf("buildOrderBy(%q, %q) = %q, ожидалось %q", tt.sortBy, tt.order, got, tt.want)
		}
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	if got := likePattern(`50%_a\b`); got != `%50\%\_a\\b%` {
		t.Errorf("likePattern = %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?, ?, ?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := placeholders(0); got != "" {
		t.Errorf("placeholders(0) = %q", got)
	}
}

func TestBuildUserWhere(t *testing.T) {
	active := false
	where, args := buildUserWhere(UserSearchParams{ListParams: ListParams{Search: "zs"}, IsActive: &active})
	if !strings.Contains(where, "LIKE") || !strings.Contains(where, "is_active = ?") {
		t.Errorf("where = %q", where)
	}
	if len(args) != 3 || args[2] != false {
		t.Errorf("args = %v", args)
	}
}

// --- Пользователи ---

func TestUserRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	u := createUser(t, repo, "u1", "zs@example.com", "张三", true)

	got, err := repo.GetByEmail(ctx, "zs@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != "u1" || got.Name != "张三" || !got.IsActive || got.LastLoginAt != nil {
		t.Errorf("пользователь = %+v", got)
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("CreatedAt = %v, ожидалось %v", got.CreatedAt, u.CreatedAt)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) = %v, ожидался ErrNotFound", err)
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "u1", "dup@example.com", "a", true)

	err := repo.Create(context.Background(), &model.User{ID: "u2", Email: "dup@example.com", Name: "b"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, ожидался ErrConflict", err)
	}
}

func TestUserRepo_SearchFilterSortPage(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "u1", "a@example.com", "Alice", true)
	createUser(t, repo, "u2", "b@example.com", "Bob", false)
	createUser(t, repo, "u3", "c@example.com", "Carol", true)
	createUser(t, repo, "u4", "d@test.org", "Dave", true)

	users, total, err := repo.Search(ctx, UserSearchParams{
		ListParams: ListParams{Search: "example", SortBy: "name", SortOrder: "asc", Limit: 2},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 3 || len(users) != 2 || users[0].Name != "Alice" || users[1].Name != "Bob" {
		t.Errorf("total=%d users=%v", total, users)
	}

	inactive := false
	users, total, err = repo.Search(ctx, UserSearchParams{ListParams: ListParams{Limit: 10}, IsActive: &inactive})
	if err != nil {
		t.Fatalf("Search(inactive): %v", err)
	}
	if total != 1 || users[0].ID != "u2" {
		t.Errorf("неактивные: total=%d users=%v", total, users)
	}
}

func TestUserRepo_RolesAndPermissions(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	roles := NewRoleRepository(db)
	perms := NewPermissionRepository(db)

	createUser(t, users, "u1", "a@example.com", "Alice", true)
	for _, r := range []*model.Role{{ID: "r1", Name: "管理员", Code: "admin"}, {ID: "r2", Name: "编辑", Code: "editor"}} {
		if err := roles.Create(ctx, r); err != nil {
			t.Fatalf("roles.Create: %v", err)
		}
	}
	if err := perms.Create(ctx, &model.Permission{ID: "p1", Name: "查看用户", Action: "read", Resource: "users"}); err != nil {
		t.Fatalf("perms.Create: %v", err)
	}
	if err := roles.SetPermissions(ctx, "r1", []string{"p1"}); err != nil {
		t.Fatalf("SetPermissions: %v", err)
	}

	if err := users.SetRoles(ctx, "u1", []string{"r1", "r2"}); err != nil {
		t.Fatalf("SetRoles: %v", err)
	}
	// Повторное назначение не ошибка
	if err := users.AddRole(ctx, "u1", "r1"); err != nil {
		t.Fatalf("AddRole: %v", err)
	}

	got, err := users.Roles(ctx, "u1")
	if err != nil || len(got) != 2 {
		t.Fatalf("Roles = %v, %v", got, err)
	}

	ok, err := users.HasPermission(ctx, "u1", "read", "users")
	if err != nil || !ok {
		t.Errorf("HasPermission(read users) = %v, %v", ok, err)
	}
	ok, _ = users.HasPermission(ctx, "u1", "delete", "users")
	if ok {
		t.Error("HasPermission(delete users) = true")
	}
	if ok, _ := users.HasRole(ctx, "u1", "editor"); !ok {
		t.Error("HasRole(editor) = false")
	}

	list, err := users.Permissions(ctx, "u1")
	if err != nil || len(list) != 1 || list[0].ID != "p1" {
		t.Errorf("Permissions = %v, %v", list, err)
	}

	if err := users.RemoveRole(ctx, "u1", "r1"); err != nil {
		t.Fatalf("RemoveRole: %v", err)
	}
	if err := users.RemoveRole(ctx, "u1", "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный RemoveRole = %v, ожидался ErrNotFound", err)
	}

	// Удаление роли снимает связи каскадно
	if err := roles.Delete(ctx, "r2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := users.Roles(ctx, "u1"); len(got) != 0 {
		t.Errorf("после удаления ролей осталось %d", len(got))
	}
}

func TestUserRepo_SetActiveDeleteRecordLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "u1", "a@example.com", "Alice", true)
	createUser(t, repo, "u2", "b@example.com", "Bob", true)

	n, err := repo.SetActive(ctx, []string{"u1", "u2", "missing"}, false)
	if err != nil || n != 2 {
		t.Fatalf("SetActive = %d, %v", n, err)
	}

	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if err := repo.RecordLogin(ctx, "u1", "127.0.0.1", at); err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	u, _ := repo.GetByID(ctx, "u1")
	if u.IsActive || u.LoginCount != 1 || u.LastLoginIP != "127.0.0.1" || u.LastLoginAt == nil || !u.LastLoginAt.Equal(at) {
		t.Errorf("после входа = %+v", u)
	}
	if err := repo.RecordLogin(ctx, "missing", "", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordLogin(missing) = %v", err)
	}

	n, err = repo.Delete(ctx, []string{"u2"})
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if n, _ := repo.Delete(ctx, nil); n != 0 {
		t.Errorf("Delete(nil) = %d", n)
	}
}

// --- Роли ---

func TestRoleRepo_UpdateSearchConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewRoleRepository(newTestDB(t))
	desc := "全部权限"
	admin := &model.Role{ID: "r1", Name: "管理员", Code: "admin", Description: &desc, IsSystem: true}
	if err := repo.Create(ctx, admin); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &model.Role{ID: "r2", Name: "编辑", Code: "editor"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Create(ctx, &model.Role{ID: "r3", Name: "x", Code: "admin"}); !errors.Is(err, ErrConflict) {
		t.Errorf("дубликат кода = %v, ожидался ErrConflict", err)
	}

	got, err := repo.GetByCode(ctx, "admin")
	if err != nil || got.Description == nil || *got.Description != desc || !got.IsSystem {
		t.Fatalf("GetByCode = %+v, %v", got, err)
	}

	got.Name = "超级管理员"
	got.Description = nil
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, "r1")
	if got.Name != "超级管理员" || got.Description != nil {
		t.Errorf("после Update = %+v", got)
	}

	list, total, err := repo.Search(ctx, ListParams{Search: "edit", Limit: 10})
	if err != nil || total != 1 || list[0].Code != "editor" {
		t.Errorf("Search = %v, %d, %v", list, total, err)
	}

	if err := repo.Update(ctx, &model.Role{ID: "missing", Name: "a", Code: "b"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) = %v", err)
	}
}

// --- Права ---

func TestPermissionRepo_SearchAndParent(t *testing.T) {
	ctx := context.Background()
	repo := NewPermissionRepository(newTestDB(t))

	root := &model.Permission{ID: "p1", Name: "系统管理", Type: model.PermissionTypeMenu, Action: "menu", Resource: "system", Sort: 1}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatalf("Create: %v", err)
	}
	parent := "p1"
	child := &model.Permission{ID: "p2", Name: "用户管理", Action: "read", Resource: "users", ParentID: &parent, Sort: 2}
	if err := repo.Create(ctx, child); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if child.Type != model.PermissionTypeAPI || child.Status != 1 {
		t.Errorf("значения по умолчанию: type=%q status=%d", child.Type, child.Status)
	}

	dup := &model.Permission{ID: "p3", Name: "dup", Action: "read", Resource: "users"}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("дубликат action/resource = %v", err)
	}

	list, total, err := repo.Search(ctx, PermissionSearchParams{ListParams: ListParams{Limit: 10}, Resource: "users"})
	if err != nil || total != 1 || list[0].ParentID == nil || *list[0].ParentID != "p1" {
		t.Errorf("Search = %v, %d, %v", list, total, err)
	}

	// Удаление родителя обнуляет parent_id у потомков
	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := repo.GetByID(ctx, "p2")
	if got.ParentID != nil {
		t.Errorf("ParentID = %v, ожидался nil", *got.ParentID)
	}

	all, err := repo.All(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("All = %v, %v", all, err)
	}
}

func TestPermissionRepo_ActionsResources(t *testing.T) {
	ctx := context.Background()
	repo := NewPermissionRepository(newTestDB(t))
	for i, p := range []model.Permission{
		{Name: "a", Action: "read", Resource: "users"},
		{Name: "b", Action: "delete", Resource: "users"},
		{Name: "c", Action: "read", Resource: "roles"},
	} {
		p.ID = string(rune('1' + i))
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	actions, err := repo.Actions(ctx)
	if err != nil || strings.Join(actions, ",") != "delete,read" {
		t.Errorf("Actions = %v, %v", actions, err)
	}
	resources, _ := repo.Resources(ctx)
	if strings.Join(resources, ",") != "roles,users" {
		t.Errorf("Resources = %v", resources)
	}

	// Limit < 0 — без ограничения
	list, total, err := repo.Search(ctx, PermissionSearchParams{ListParams: ListParams{Limit: -1}, Action: "read"})
	if err != nil || len(list) != 2 || total != 2 {
		t.Errorf("Search = %d/%d, %v", len(list), total, err)
	}
}
