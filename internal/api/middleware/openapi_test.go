package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/goartstore/admin-console/internal/api/openapi"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// newValidated оборачивает next проверкой по встроенному документу.
func newValidated(t *testing.T, next http.Handler) http.Handler {
	t.Helper()
	doc, err := openapi.Load(context.Background())
	if err != nil {
		t.Fatalf("openapi.Load: %v", err)
	}
	validator, err := RequestValidator(doc, testLogger())
	if err != nil {
		t.Fatalf("RequestValidator: %v", err)
	}
	return validator(next)
}

type validatorCase struct {
	name        string
	method      string
	target      string
	body        string
	wantPass    bool
	wantMessage string
}

func TestRequestValidator(t *testing.T) {
	cases := []validatorCase{
		{name: "обязательный параметр", method: http.MethodGet, target: "/api/roles/detail",
			wantMessage: "缺少参数 id"},
		{name: "пустой обязательный параметр", method: http.MethodGet, target: "/api/roles/detail?id=",
			wantMessage: "缺少参数 id"},
		{name: "тип параметра", method: http.MethodGet, target: "/api/users?page=abc",
			wantMessage: "参数 page 格式错误"},
		{name: "поле тела", method: http.MethodPost, target: "/api/roles", body: `{"code":"editor"}`,
			wantMessage: "name"},
		{name: "тип поля тела", method: http.MethodPut, target: "/api/users/status",
			body: `{"userIds":["u1"],"isActive":"yes"}`, wantMessage: "isActive"},
		{name: "нет тела", method: http.MethodPost, target: "/api/users/logout",
			wantMessage: "缺少请求体"},
		{name: "корректный запрос", method: http.MethodGet, target: "/api/users?page=2&limit=10&isActive=true",
			wantPass: true},
		{name: "пустой поиск", method: http.MethodGet, target: "/api/permissions/search?keyword=",
			wantPass: true},
		{name: "путь вне документа", method: http.MethodGet, target: "/api/unknown", wantPass: true},
		{name: "метод вне документа", method: http.MethodPatch, target: "/api/roles", wantPass: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			passed := false
			handler := newValidated(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				passed = true
				w.WriteHeader(http.StatusNoContent)
			}))

			var body io.Reader = http.NoBody
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.target, body)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if passed != tc.wantPass {
				t.Fatalf("обработчик вызван = %v, ожидалось %v (%s)", passed, tc.wantPass, rec.Body.String())
			}
			if tc.wantPass {
				return
			}

			if rec.Code != http.StatusOK {
				t.Errorf("HTTP %d, ожидался 200", rec.Code)
			}
			var env struct {
				StatusCode int    `json:"statusCode"`
				Message    string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("тело не конверт: %v", err)
			}
			if env.StatusCode != int(request.CodeInvalidParameter) {
				t.Errorf("statusCode = %d, ожидался %d", env.StatusCode, request.CodeInvalidParameter)
			}
			if !strings.Contains(env.Message, tc.wantMessage) {
				t.Errorf("message = %q, ожидалось содержимое %q", env.Message, tc.wantMessage)
			}
		})
	}
}

func TestRequestValidator_BodyReadableAfterCheck(t *testing.T) {
	const payload = `{"name":"Редактор","code":"editor"}`

	var got string
	handler := newValidated(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/roles", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != payload {
		t.Errorf("тело в обработчике = %q, ожидалось %q", got, payload)
	}
}
