package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goartstore/admin-console/internal/api/openapi"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// TestRoutes_MatchOpenAPI сверяет маршруты /api с openapi.yaml в обе стороны.
func TestRoutes_MatchOpenAPI(t *testing.T) {
	doc, err := openapi.Load(context.Background())
	if err != nil {
		t.Fatalf("openapi.Load: %v", err)
	}

	r := chi.NewRouter()
	(&APIHandler{}).Register(r)

	registered := make(map[string]bool)
	err = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/") {
			return nil
		}
		path := strings.TrimSuffix(route, "/")
		registered[method+" "+path] = true

		item := doc.Paths.Value(path)
		if item == nil || item.GetOperation(method) == nil {
			t.Errorf("%s %s нет в openapi.yaml", method, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk: %v", err)
	}

	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			if !registered[method+" "+path] {
				t.Errorf("%s %s описан в openapi.yaml, но не зарегистрирован", method, path)
			}
		}
	}
}

func TestOpenAPIDocument_Served(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/openapi.yaml", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("HTTP %d, ожидался 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.HasPrefix(string(body), "openapi: 3.0") {
		t.Errorf("тело не документ OpenAPI: %.40q", body)
	}
}

func TestValidation_ContractErrors(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, testAdminEmail, testAdminPassword).AccessToken

	env := a.call(t, http.MethodGet, "/api/users?limit=many", token, nil, nil)
	if env.StatusCode != int(request.CodeInvalidParameter) || !strings.Contains(env.Message, "limit") {
		t.Errorf("limit=many: %+v", env)
	}

	env = a.call(t, http.MethodPost, "/api/users/assign-role", token, map[string]any{"userId": "u1", "roleId": 7}, nil)
	if env.StatusCode != int(request.CodeInvalidParameter) || !strings.Contains(env.Message, "roleId") {
		t.Errorf("roleId числом: %+v", env)
	}
}
