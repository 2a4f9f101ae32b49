package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// capturedRequest — то, что увидел mock-сервер.
type capturedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

// setupMockAPI поднимает сервер, отвечающий data на любой запрос.
func setupMockAPI(t *testing.T, data any) (*Client, *capturedRequest) {
	t.Helper()

	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = map[string]string{}
		for k := range r.URL.Query() {
			got.query[k] = r.URL.Query().Get(k)
		}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": 200, "message": "success", "data": data})
	}))
	t.Cleanup(srv.Close)

	d := request.New(request.Config{
		BaseURL:  srv.URL,
		Notifier: &request.Recorder{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return New(d), got
}

func TestListUsers(t *testing.T) {
	c, got := setupMockAPI(t, map[string]any{
		"users": []map[string]any{{"id": "u1", "email": "a@b.c", "isActive": true}},
		"total": 11, "page": 2, "limit": 10,
	})

	res, err := c.ListUsers(context.Background(), UserQuery{
		ListQuery: ListQuery{Page: 2, Limit: 10, Search: "a@", SortBy: "createdAt", SortOrder: "desc"},
	})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}

	if got.method != http.MethodGet || got.path != "/api/users" {
		t.Errorf("запрос = %s %s", got.method, got.path)
	}
	want := map[string]string{"page": "2", "limit": "10", "search": "a@", "sortBy": "createdAt", "sortOrder": "desc"}
	for k, v := range want {
		if got.query[k] != v {
			t.Errorf("query[%s] = %q, ожидалось %q", k, got.query[k], v)
		}
	}
	if _, ok := got.query["isActive"]; ok {
		t.Error("isActive = nil не должен передаваться")
	}

	if res.Total != 11 || len(res.Users) != 1 || res.Users[0].Email != "a@b.c" {
		t.Errorf("ответ = %+v", res)
	}
}

func TestLoginWithPassword(t *testing.T) {
	c, got := setupMockAPI(t, map[string]any{"id": "u1", "email": "a@b.c", "accessToken": "jwt"})

	user, err := c.LoginWithPassword(context.Background(), model.PasswordLoginRequest{
		Email: "a@b.c", Password: "iv:cipher", KeyID: "k1",
	})
	if err != nil {
		t.Fatalf("LoginWithPassword: %v", err)
	}

	if got.method != http.MethodPost || got.path != "/api/users/login-password" {
		t.Errorf("запрос = %s %s", got.method, got.path)
	}
	if got.body["keyId"] != "k1" || got.body["password"] != "iv:cipher" {
		t.Errorf("тело = %v", got.body)
	}
	if user.AccessToken != "jwt" {
		t.Errorf("AccessToken = %q", user.AccessToken)
	}
}

func TestDeleteRole_UsesQuery(t *testing.T) {
	c, got := setupMockAPI(t, nil)

	if err := c.DeleteRole(context.Background(), "r1"); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if got.method != http.MethodDelete || got.path != "/api/roles" || got.query["id"] != "r1" {
		t.Errorf("запрос = %s %s %v", got.method, got.path, got.query)
	}
}

func TestCheckPermission(t *testing.T) {
	c, got := setupMockAPI(t, map[string]bool{"hasPermission": true})

	ok, err := c.CheckPermission(context.Background(), "u1", "read", "users")
	if err != nil {
		t.Fatalf("CheckPermission: %v", err)
	}
	if !ok {
		t.Error("hasPermission = false")
	}
	if got.query["action"] != "read" || got.query["resource"] != "users" {
		t.Errorf("query = %v", got.query)
	}
}

func TestPermissionTree(t *testing.T) {
	c, _ := setupMockAPI(t, []map[string]any{
		{"id": "p1", "name": "系统", "children": []map[string]any{{"id": "p2", "name": "用户", "parentId": "p1"}}},
	})

	tree, err := c.PermissionTree(context.Background())
	if err != nil {
		t.Fatalf("PermissionTree: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Children) != 1 || *tree[0].Children[0].ParentID != "p1" {
		t.Errorf("дерево = %+v", tree)
	}
}
