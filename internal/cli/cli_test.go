package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goartstore/admin-console/internal/config"
	"github.com/bigkaa/goartstore/admin-console/internal/database"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
	"github.com/bigkaa/goartstore/admin-console/internal/server"
	"github.com/bigkaa/goartstore/admin-console/internal/session"
	"github.com/bigkaa/goartstore/admin-console/internal/validation"
)

// codeMailer запоминает последний код на адрес.
type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) SendCode(_ context.Context, email, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[email] = code
	return nil
}

func (m *codeMailer) code(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// testEnv — dev API на httptest и файл состояния клиента.
type testEnv struct {
	url    string
	state  string
	mailer *codeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	db, err := database.Connect(ctx, database.MemoryPath, logger)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.MigrateSchema(db, logger); err != nil {
		t.Fatalf("MigrateSchema: %v", err)
	}

	mailer := &codeMailer{}
	api, err := newDevAPI(ctx, cfg, db, mailer, bcrypt.MinCost, logger)
	if err != nil {
		t.Fatalf("newDevAPI: %v", err)
	}
	srv := httptest.NewServer(server.NewRouter(api.handler, api.middlewares...))
	t.Cleanup(srv.Close)

	return &testEnv{
		url:    srv.URL,
		state:  filepath.Join(t.TempDir(), "state.db"),
		mailer: mailer,
	}
}

// run выполняет команду с флагами окружения и возвращает stdout и stderr.
func (e *testEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--api-url", e.url, "--state", e.state, "--log-level", "error", "--plain"}, args...))

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func TestLogin_WhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")
	if !strings.Contains(out, "登录成功: admin@example.com") {
		t.Errorf("login: %q", out)
	}

	out = env.mustRun(t, "whoami")
	for _, want := range []string{"admin@example.com", "Administrator", "管理员"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami без %q:\n%s", want, out)
		}
	}

	out = env.mustRun(t, "logout")
	if !strings.Contains(out, "已退出登录") {
		t.Errorf("logout: %q", out)
	}

	if _, _, err := env.run(t, "whoami"); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Errorf("whoami после выхода: %v", err)
	}
}

func TestLogin_PromptsPassword(t *testing.T) {
	env := newTestEnv(t)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader("admin@example.com\nadmin123\n"))
	root.SetArgs([]string{"--api-url", env.url, "--state", env.state, "--log-level", "error", "login"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "登录成功") {
		t.Errorf("вывод: %q", out.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, errOut, err := env.run(t, "login", "--email", "admin@example.com", "--password", "wrong-password")
	var reqErr *request.Error
	if !errors.As(err, &reqErr) || reqErr.Code != request.CodeInvalidCredentials {
		t.Fatalf("ожидалась ошибка неверного пароля, получено %v", err)
	}
	// Уведомление диспетчера уже напечатано
	if !strings.Contains(errOut, "错误: ") {
		t.Errorf("нет уведомления в stderr: %q", errOut)
	}

	var buf bytes.Buffer
	reportError(&buf, err)
	if buf.Len() != 0 {
		t.Errorf("ошибка запроса напечатана повторно: %q", buf.String())
	}
}

func TestLogin_InvalidForm(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "login", "--email", "not-an-email", "--password", "admin123")
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("ожидалась ошибка валидации, получено %v", err)
	}

	var buf bytes.Buffer
	reportError(&buf, err)
	if !strings.Contains(buf.String(), "请输入有效的邮箱地址") {
		t.Errorf("reportError: %q", buf.String())
	}
}

func TestRegister_WithEmailCode(t *testing.T) {
	env := newTestEnv(t)
	const email = "new@example.com"

	out := env.mustRun(t, "send-code", "--purpose", "register", "--email", email)
	if !strings.Contains(out, "验证码已发送至 "+email) {
		t.Errorf("send-code: %q", out)
	}
	code := env.mailer.code(email)
	if code == "" {
		t.Fatal("код не отправлен")
	}

	out = env.mustRun(t, "register", "--email", email, "--password", "secret1", "--confirm-password", "secret1", "--code", code)
	if !strings.Contains(out, "注册成功: "+email) {
		t.Errorf("register: %q", out)
	}

	out = env.mustRun(t, "whoami")
	if !strings.Contains(out, email) || !strings.Contains(out, "普通用户") {
		t.Errorf("whoami:\n%s", out)
	}
}

func TestLoginCode(t *testing.T) {
	env := newTestEnv(t)
	const email = "admin@example.com"

	env.mustRun(t, "send-code", "--email", email)
	out := env.mustRun(t, "login-code", "--email", email, "--code", env.mailer.code(email))
	if !strings.Contains(out, "登录成功") {
		t.Errorf("login-code: %q", out)
	}
}

func TestSendCode_InvalidPurpose(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.run(t, "send-code", "--purpose", "reset", "--email", "a@example.com"); err == nil {
		t.Error("ожидалась ошибка --purpose")
	}
}

func TestPages_Plain(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.run(t, "users"); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("users без входа: %v", err)
	}

	env.mustRun(t, "login", "--email", "admin@example.com", "--password", "admin123")

	tests := []struct {
		args []string
		want []string
	}{
		{args: []string{"users"}, want: []string{"用户管理", "Administrator", "活跃"}},
		{args: []string{"roles"}, want: []string{"角色管理", "管理员", "普通用户"}},
		{args: []string{"permissions"}, want: []string{"权限管理", "共 16 条，显示第 1-10 条", "10 条/页"}},
		{args: []string{"--page-size", "20", "permissions"}, want: []string{"系统管理", "▸ "}},
	}
	for _, tt := range tests {
		out := env.mustRun(t, tt.args...)
		for _, want := range tt.want {
			if !strings.Contains(out, want) {
				t.Errorf("%v: нет %q в выводе:\n%s", tt.args, want, out)
			}
		}
	}
}

func TestRootFlags_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "размер страницы", args: []string{"--page-size", "7", "users"}},
		{name: "схема URL", args: []string{"--api-url", "ftp://example.com", "whoami"}},
		{name: "уровень логов", args: []string{"--log-level", "verbose", "whoami"}},
		{name: "формат логов", args: []string{"--log-format", "xml", "whoami"}},
		{name: "порт dev API", args: []string{"dev-api", "--port", "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := env.run(t, tt.args...); err == nil {
				t.Error("ожидалась ошибка")
			}
		})
	}
}
