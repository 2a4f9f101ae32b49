package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goartstore/admin-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/admin-console/internal/api/openapi"
	"github.com/bigkaa/goartstore/admin-console/internal/database"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/pwcrypt"
	"github.com/bigkaa/goartstore/admin-console/internal/repository"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/server"
	"github.com/bigkaa/goartstore/admin-console/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin123"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// codeMailer запоминает отправленные коды.
type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) SendCode(_ context.Context, email, purpose, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[purpose+":"+email] = code
	return nil
}

func (m *codeMailer) code(purpose, email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[purpose+":"+email]
}

// testAPI — роутер dev API поверх in-memory SQLite.
type testAPI struct {
	router http.Handler
	mailer *codeMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	db, err := database.Connect(ctx, database.MemoryPath, logger)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.MigrateSchema(db, logger); err != nil {
		t.Fatalf("MigrateSchema: %v", err)
	}

	users := repository.NewUserRepository(db)
	roles := repository.NewRoleRepository(db)
	perms := repository.NewPermissionRepository(db)
	seed := service.SeedConfig{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword, HashCost: bcrypt.MinCost}
	if err := service.Seed(ctx, seed, users, roles, perms, logger); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	tokens, err := service.NewTokenService(ctx, service.TokenConfig{Issuer: "test", TTL: time.Hour, Leeway: time.Second}, logger)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	mailer := &codeMailer{}
	auth := service.NewAuthService(service.AuthConfig{KeyTTL: time.Minute, CodeTTL: time.Minute, HashCost: bcrypt.MinCost},
		users, roles, tokens, mailer, logger)

	h := NewAPIHandler(
		NewHealthHandler(database.NewReadinessChecker(db), tokens),
		auth,
		tokens,
		service.NewUserService(users, roles, bcrypt.MinCost, logger),
		service.NewRoleService(roles, perms, logger),
		service.NewPermissionService(perms, logger),
		logger,
	)
	guard := middleware.NewEdgeGuard(auth, logger, middleware.PublicAPIPaths...)
	doc, err := openapi.Load(ctx)
	if err != nil {
		t.Fatalf("openapi.Load: %v", err)
	}
	validator, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		t.Fatalf("RequestValidator: %v", err)
	}

	return &testAPI{
		router: server.NewRouter(h,
			chimw.RequestID,
			middleware.RequestLogger(logger),
			middleware.MetricsMiddleware(),
			server.WithExclusions(guard.Middleware(), "/health", "/metrics", "/.well-known", "/openapi.yaml"),
			validator,
		),
		mailer: mailer,
	}
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// do выполняет запрос; token добавляется как Bearer, если не пустой.
func (a *testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// call выполняет запрос и разбирает конверт; data декодируется в out.
func (a *testAPI) call(t *testing.T, method, target, token string, body, out any) envelope {
	t.Helper()
	rec := a.do(t, method, target, token, body)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: тело не конверт: %v (%s)", method, target, err, rec.Body.String())
	}
	if out != nil && env.StatusCode == http.StatusOK {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: data: %v", method, target, err)
		}
	}
	return env
}

// login выполняет вход по паролю и возвращает пользователя с токенами.
func (a *testAPI) login(t *testing.T, email, password string) *model.User {
	t.Helper()
	var key model.EncryptionKey
	if env := a.call(t, http.MethodGet, "/api/users/encryption-key", "", nil, &key); env.StatusCode != http.StatusOK {
		t.Fatalf("encryption-key: %+v", env)
	}
	encrypted, err := pwcrypt.Encrypt(password, key.Key)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	var user model.User
	env := a.call(t, http.MethodPost, "/api/users/login-password", "",
		model.PasswordLoginRequest{Email: email, Password: encrypted, KeyID: key.KeyID}, &user)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("login-password: %+v", env)
	}
	return &user
}

func TestAPIHealth_Public(t *testing.T) {
	a := newTestAPI(t)

	var health model.Health
	env := a.call(t, http.MethodGet, "/api/health", "", nil, &health)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("statusCode = %d, ожидался 200", env.StatusCode)
	}
	if health.Service != serviceName || health.Status != "ok" {
		t.Errorf("health = %+v", health)
	}
	if health.Database["type"] != "sqlite" {
		t.Errorf("database = %v", health.Database)
	}
}

func TestHealthReady(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("HTTP %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"signingKeys"`) {
		t.Errorf("нет проверки ключей: %s", rec.Body.String())
	}
}

func TestJWKS(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/.well-known/jwks.json", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("HTTP %d", rec.Code)
	}
	var set struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if len(set.Keys) != 1 || set.Keys[0]["kty"] != "RSA" {
		t.Errorf("keys = %v", set.Keys)
	}
}

func TestProtectedAPI_WithoutToken(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/users", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("HTTP %d, ожидался 401", rec.Code)
	}
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.StatusCode != int(request.CodeMissingToken) {
		t.Errorf("statusCode = %d, ожидался %d", env.StatusCode, request.CodeMissingToken)
	}

	rec = a.do(t, http.MethodGet, "/api/users", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("невалидный токен: HTTP %d, ожидался 401", rec.Code)
	}
}

func TestPasswordLogin_AndListUsers(t *testing.T) {
	a := newTestAPI(t)
	user := a.login(t, testAdminEmail, testAdminPassword)
	if user.AccessToken == "" || user.RefreshToken == "" {
		t.Fatalf("токены не выданы: %+v", user)
	}
	if len(user.Roles) == 0 || user.Roles[0].Code != service.AdminRoleCode {
		t.Errorf("роли = %+v", user.Roles)
	}

	var list model.UserList
	env := a.call(t, http.MethodGet, "/api/users?page=1&limit=5&sortBy=email&sortOrder=asc", user.AccessToken, nil, &list)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("ListUsers: %+v", env)
	}
	if list.Total != 1 || list.Limit != 5 || list.Users[0].Email != testAdminEmail {
		t.Errorf("list = %+v", list)
	}

	var me model.User
	a.call(t, http.MethodGet, "/api/users/me", user.AccessToken, nil, &me)
	if me.ID != user.ID || me.LoginCount != 1 {
		t.Errorf("me = %+v", me)
	}
}

func TestPasswordLogin_WrongPassword(t *testing.T) {
	a := newTestAPI(t)

	var key model.EncryptionKey
	a.call(t, http.MethodGet, "/api/users/encryption-key", "", nil, &key)
	encrypted, _ := pwcrypt.Encrypt("wrong-password", key.Key)

	rec := a.do(t, http.MethodPost, "/api/users/login-password", "",
		model.PasswordLoginRequest{Email: testAdminEmail, Password: encrypted, KeyID: key.KeyID})
	if rec.Code != http.StatusOK {
		t.Fatalf("прикладная ошибка должна идти с HTTP 200, получено %d", rec.Code)
	}
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.StatusCode != int(request.CodeInvalidCredentials) {
		t.Errorf("statusCode = %d, ожидался %d", env.StatusCode, request.CodeInvalidCredentials)
	}
	if env.Message != request.CodeInvalidCredentials.Message() {
		t.Errorf("message = %q", env.Message)
	}

	// Ключ одноразовый
	env = a.call(t, http.MethodPost, "/api/users/login-password", "",
		model.PasswordLoginRequest{Email: testAdminEmail, Password: encrypted, KeyID: key.KeyID}, nil)
	if env.StatusCode != int(request.CodeKeyExpired) {
		t.Errorf("повторный ключ: statusCode = %d, ожидался %d", env.StatusCode, request.CodeKeyExpired)
	}
}

func TestRegister_AndCodeLogin(t *testing.T) {
	a := newTestAPI(t)
	const email = "new@example.com"

	env := a.call(t, http.MethodPost, "/api/users/send-email-code", "", model.EmailRequest{Email: email}, nil)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("send-email-code: %+v", env)
	}
	var user model.User
	env = a.call(t, http.MethodPost, "/api/users/register", "", model.RegisterRequest{
		Email:                 email,
		Name:                  email,
		Password:              "secret1",
		EmailVerificationCode: a.mailer.code(service.CodePurposeRegister, email),
	}, &user)
	if env.StatusCode != http.StatusOK || !user.EmailVerified {
		t.Fatalf("register: %+v %+v", env, user)
	}

	// Повторная регистрация
	a.call(t, http.MethodPost, "/api/users/send-email-code", "", model.EmailRequest{Email: email}, nil)
	env = a.call(t, http.MethodPost, "/api/users/send-email-code", "", model.EmailRequest{Email: email}, nil)
	if env.StatusCode != int(request.CodeEmailExists) {
		t.Errorf("statusCode = %d, ожидался %d", env.StatusCode, request.CodeEmailExists)
	}

	a.call(t, http.MethodPost, "/api/users/send-login-code", "", model.EmailRequest{Email: email}, nil)
	env = a.call(t, http.MethodPost, "/api/users/login", "", model.CodeLoginRequest{
		Email:                 email,
		EmailVerificationCode: a.mailer.code(service.CodePurposeLogin, email),
	}, &user)
	if env.StatusCode != http.StatusOK || user.AccessToken == "" {
		t.Fatalf("login: %+v", env)
	}

	env = a.call(t, http.MethodPost, "/api/users/login", "", model.CodeLoginRequest{
		Email:                 email,
		EmailVerificationCode: "000000",
	}, nil)
	if env.StatusCode != int(request.CodeInvalidVerificationCode) {
		t.Errorf("statusCode = %d, ожидался %d", env.StatusCode, request.CodeInvalidVerificationCode)
	}
}

func TestValidation_InvalidParameter(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, testAdminEmail, testAdminPassword).AccessToken

	env := a.call(t, http.MethodPost, "/api/roles", token, map[string]any{}, nil)
	if env.StatusCode != int(request.CodeInvalidParameter) {
		t.Errorf("пустое тело: statusCode = %d", env.StatusCode)
	}

	rec := a.do(t, http.MethodGet, "/api/roles/detail", token, nil)
	var e envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &e)
	if e.StatusCode != int(request.CodeInvalidParameter) || !strings.Contains(e.Message, "id") {
		t.Errorf("без id: %+v", e)
	}
}

func TestRoles_CRUD(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, testAdminEmail, testAdminPassword).AccessToken

	var role model.Role
	env := a.call(t, http.MethodPost, "/api/roles", token, model.RoleInput{Name: "审计", Code: "auditor"}, &role)
	if env.StatusCode != http.StatusOK || role.ID == "" {
		t.Fatalf("CreateRole: %+v", env)
	}

	env = a.call(t, http.MethodPost, "/api/roles", token, model.RoleInput{Name: "审计2", Code: "auditor"}, nil)
	if env.StatusCode != int(request.CodeResourceExists) {
		t.Errorf("дубль кода: statusCode = %d", env.StatusCode)
	}

	var byCode model.Role
	a.call(t, http.MethodGet, "/api/roles/by-code?code=auditor", token, nil, &byCode)
	if byCode.ID != role.ID {
		t.Errorf("by-code = %+v", byCode)
	}

	var actions []model.Permission
	a.call(t, http.MethodGet, "/api/permissions/by-action?action=read", token, nil, &actions)
	if len(actions) == 0 {
		t.Fatal("нет прав read")
	}
	env = a.call(t, http.MethodPost, "/api/roles/assign-permissions", token,
		model.AssignPermissionsRequest{RoleID: role.ID, PermissionIDs: []string{actions[0].ID}}, nil)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("assign-permissions: %+v", env)
	}

	var detail model.RoleDetail
	a.call(t, http.MethodGet, "/api/roles/detail?id="+role.ID, token, nil, &detail)
	if len(detail.Permissions) != 1 {
		t.Errorf("permissions = %d, ожидалось 1", len(detail.Permissions))
	}

	env = a.call(t, http.MethodDelete, "/api/roles?id="+role.ID, token, nil, nil)
	if env.StatusCode != http.StatusOK {
		t.Errorf("DeleteRole: %+v", env)
	}
	env = a.call(t, http.MethodGet, "/api/roles/detail?id="+role.ID, token, nil, nil)
	if env.StatusCode != int(request.CodeDataNotFound) {
		t.Errorf("после удаления: statusCode = %d", env.StatusCode)
	}

	var admin model.Role
	a.call(t, http.MethodGet, "/api/roles/by-code?code=admin", token, nil, &admin)
	env = a.call(t, http.MethodDelete, "/api/roles?id="+admin.ID, token, nil, nil)
	if env.StatusCode != int(request.CodeBusinessRuleViolation) {
		t.Errorf("удаление системной роли: statusCode = %d", env.StatusCode)
	}
}

func TestUsers_ChecksAndStatus(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, testAdminEmail, testAdminPassword)

	var check map[string]bool
	a.call(t, http.MethodGet, "/api/users/check-permission?userId="+admin.ID+"&action=delete&resource=roles",
		admin.AccessToken, nil, &check)
	if !check["hasPermission"] {
		t.Errorf("check-permission = %v", check)
	}
	a.call(t, http.MethodGet, "/api/users/check-role?userId="+admin.ID+"&roleCode=admin", admin.AccessToken, nil, &check)
	if !check["hasRole"] {
		t.Errorf("check-role = %v", check)
	}

	var created model.User
	env := a.call(t, http.MethodPost, "/api/users", admin.AccessToken, model.CreateUserRequest{
		Email: "op@example.com", Name: "op", Password: "secret1",
	}, &created)
	if env.StatusCode != http.StatusOK || !created.IsActive {
		t.Fatalf("CreateUser: %+v %+v", env, created)
	}

	env = a.call(t, http.MethodPut, "/api/users/status", admin.AccessToken,
		model.ToggleUserStatusRequest{UserIDs: []string{created.ID}, IsActive: false}, nil)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("status: %+v", env)
	}

	var list model.UserList
	a.call(t, http.MethodGet, "/api/users?isActive=false", admin.AccessToken, nil, &list)
	if list.Total != 1 || list.Users[0].ID != created.ID {
		t.Errorf("неактивные = %+v", list)
	}

	rec := a.do(t, http.MethodDelete, "/api/users", admin.AccessToken, model.UserIDsRequest{UserIDs: []string{"missing"}})
	var e envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &e)
	if e.StatusCode != int(request.CodeDataNotFound) {
		t.Errorf("удаление несуществующего: statusCode = %d", e.StatusCode)
	}
}

func TestMutations_RequirePermission(t *testing.T) {
	a := newTestAPI(t)
	const email = "reader@example.com"

	a.call(t, http.MethodPost, "/api/users/send-email-code", "", model.EmailRequest{Email: email}, nil)
	var reader model.User
	env := a.call(t, http.MethodPost, "/api/users/register", "", model.RegisterRequest{
		Email:                 email,
		Name:                  email,
		Password:              "secret1",
		EmailVerificationCode: a.mailer.code(service.CodePurposeRegister, email),
	}, &reader)
	if env.StatusCode != http.StatusOK || reader.AccessToken == "" {
		t.Fatalf("register: %+v", env)
	}

	// Чтение доступно роли по умолчанию
	if env := a.call(t, http.MethodGet, "/api/roles", reader.AccessToken, nil, nil); env.StatusCode != http.StatusOK {
		t.Errorf("GET /api/roles: statusCode = %d", env.StatusCode)
	}

	tests := []struct {
		method, target string
		body           any
	}{
		{http.MethodPost, "/api/roles", model.RoleInput{Name: "审计", Code: "auditor"}},
		{http.MethodDelete, "/api/users", model.UserIDsRequest{UserIDs: []string{reader.ID}}},
		{http.MethodPut, "/api/users/status", model.ToggleUserStatusRequest{UserIDs: []string{reader.ID}, IsActive: false}},
		{http.MethodPost, "/api/users/assign-role", model.AssignRoleRequest{UserID: reader.ID, RoleID: "any"}},
		{http.MethodDelete, "/api/permissions?id=any", nil},
	}
	for _, tt := range tests {
		env := a.call(t, tt.method, tt.target, reader.AccessToken, tt.body, nil)
		if env.StatusCode != int(request.CodeInsufficientPermission) {
			t.Errorf("%s %s: statusCode = %d, ожидался %d", tt.method, tt.target, env.StatusCode, request.CodeInsufficientPermission)
		}
	}

	// Пользователь не удалил сам себя
	admin := a.login(t, testAdminEmail, testAdminPassword)
	var got model.User
	if env := a.call(t, http.MethodGet, "/api/users/me", reader.AccessToken, nil, &got); env.StatusCode != http.StatusOK || got.ID != reader.ID {
		t.Errorf("me после отказа: %+v", env)
	}
	if env := a.call(t, http.MethodPost, "/api/roles", admin.AccessToken, model.RoleInput{Name: "审计", Code: "auditor"}, nil); env.StatusCode != http.StatusOK {
		t.Errorf("admin POST /api/roles: %+v", env)
	}
}

func TestPermissions_TreeAndMeta(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, testAdminEmail, testAdminPassword).AccessToken

	var tree []*model.Permission
	a.call(t, http.MethodGet, "/api/permissions/tree", token, nil, &tree)
	if len(tree) != 1 || len(tree[0].Children) == 0 {
		t.Fatalf("tree = %+v", tree)
	}
	if tree[0].Children[0].Level != 1 {
		t.Errorf("level = %d, ожидался 1", tree[0].Children[0].Level)
	}

	var resources []string
	a.call(t, http.MethodGet, "/api/permissions/resources", token, nil, &resources)
	if len(resources) == 0 {
		t.Error("пустой список ресурсов")
	}

	var list model.PermissionList
	a.call(t, http.MethodGet, "/api/permissions?resource=roles&limit=100", token, nil, &list)
	for _, p := range list.Permissions {
		if p.Resource != "roles" {
			t.Errorf("ресурс %q вне фильтра", p.Resource)
		}
	}

	root := tree[0].ID
	env := a.call(t, http.MethodPut, "/api/permissions", token, model.PermissionInput{
		ID: root, Name: tree[0].Name, Action: tree[0].Action, Resource: tree[0].Resource,
		ParentID: &tree[0].Children[0].ID,
	}, nil)
	if env.StatusCode != int(request.CodeInvalidParameter) {
		t.Errorf("цикл родителей: statusCode = %d", env.StatusCode)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	a := newTestAPI(t)
	admin := a.login(t, testAdminEmail, testAdminPassword)

	env := a.call(t, http.MethodPost, "/api/users/logout", admin.AccessToken, model.LogoutRequest{UserID: "someone-else"}, nil)
	if env.StatusCode != int(request.CodeInsufficientPermission) {
		t.Errorf("чужой выход: statusCode = %d", env.StatusCode)
	}

	env = a.call(t, http.MethodPost, "/api/users/logout", admin.AccessToken, model.LogoutRequest{UserID: admin.ID}, nil)
	if env.StatusCode != http.StatusOK {
		t.Fatalf("logout: %+v", env)
	}
	if rec := a.do(t, http.MethodGet, "/api/users", admin.AccessToken, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("после выхода: HTTP %d, ожидался 401", rec.Code)
	}

	env = a.call(t, http.MethodPost, "/api/users/refresh-token", "",
		model.RefreshTokenRequest{RefreshToken: admin.RefreshToken}, nil)
	if env.StatusCode == http.StatusOK {
		t.Error("refresh token после выхода должен быть отклонён")
	}
}

func TestPages_Guard(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/dashboard", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("HTTP %d, ожидался 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?redirect=%2Fdashboard" {
		t.Errorf("Location = %q", loc)
	}

	if rec := a.do(t, http.MethodGet, "/login", "", nil); rec.Code != http.StatusOK {
		t.Errorf("/login: HTTP %d", rec.Code)
	}

	admin := a.login(t, testAdminEmail, testAdminPassword)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", http.NoBody)
	req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: admin.AccessToken})
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("с cookie: HTTP %d, ожидался 200", rr.Code)
	}
}

func TestUnknownAPI_NotFound(t *testing.T) {
	a := newTestAPI(t)
	token := a.login(t, testAdminEmail, testAdminPassword).AccessToken

	rec := a.do(t, http.MethodGet, "/api/unknown", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("HTTP %d, ожидался 404", rec.Code)
	}
	rec = a.do(t, http.MethodPatch, "/api/roles", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("HTTP %d, ожидался 405", rec.Code)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	a := newTestAPI(t)

	var key model.EncryptionKey
	a.call(t, http.MethodGet, "/api/users/encryption-key", "", nil, &key)
	encrypted, _ := pwcrypt.Encrypt(testAdminPassword, key.Key)
	rec := a.do(t, http.MethodPost, "/api/users/login-password", "",
		model.PasswordLoginRequest{Email: testAdminEmail, Password: encrypted, KeyID: key.KeyID})

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AccessTokenCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("cookie accessToken не установлена")
	}
}
