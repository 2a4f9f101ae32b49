package apiclient

import (
	"context"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// UserQuery — параметры списка пользователей.
type UserQuery struct {
	ListQuery
	IsActive *bool `json:"isActive,omitempty"`
}

// --- Аутентификация ---

// Register регистрирует пользователя по коду из письма.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	return ptr[model.User](post[model.User](ctx, c, "/api/users/register", req))
}

// LoginWithCode — вход по email-коду.
func (c *Client) LoginWithCode(ctx context.Context, req model.CodeLoginRequest) (*model.User, error) {
	return ptr[model.User](post[model.User](ctx, c, "/api/users/login", req))
}

// LoginWithPassword — вход по зашифрованному паролю.
func (c *Client) LoginWithPassword(ctx context.Context, req model.PasswordLoginRequest) (*model.User, error) {
	return ptr[model.User](post[model.User](ctx, c, "/api/users/login-password", req))
}

// Logout завершает сессию пользователя на сервере.
func (c *Client) Logout(ctx context.Context, userID string) error {
	_, err := post[struct{}](ctx, c, "/api/users/logout", model.LogoutRequest{UserID: userID})
	return err
}

// RefreshToken обменивает refresh token на новую пару.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	return ptr[model.TokenPair](post[model.TokenPair](ctx, c, "/api/users/refresh-token", model.RefreshTokenRequest{RefreshToken: refreshToken}))
}

// EncryptionKey запрашивает одноразовый ключ шифрования пароля.
func (c *Client) EncryptionKey(ctx context.Context) (*model.EncryptionKey, error) {
	return ptr[model.EncryptionKey](get[model.EncryptionKey](ctx, c, "/api/users/encryption-key", nil))
}

// SendEmailCode отправляет код регистрации.
func (c *Client) SendEmailCode(ctx context.Context, email string) error {
	_, err := post[struct{}](ctx, c, "/api/users/send-email-code", model.EmailRequest{Email: email})
	return err
}

// SendLoginCode отправляет код входа.
func (c *Client) SendLoginCode(ctx context.Context, email string) error {
	_, err := post[struct{}](ctx, c, "/api/users/send-login-code", model.EmailRequest{Email: email})
	return err
}

// --- Управление пользователями ---

// ListUsers возвращает страницу пользователей.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (*model.UserList, error) {
	return ptr[model.UserList](get[model.UserList](ctx, c, "/api/users", q))
}

// CurrentUser — пользователь, которому выдан токен.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	return ptr[model.User](get[model.User](ctx, c, "/api/users/me", nil))
}

// CreateUser создаёт пользователя.
func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	return ptr[model.User](post[model.User](ctx, c, "/api/users", req))
}

// DeleteUsers удаляет пользователей пакетом.
func (c *Client) DeleteUsers(ctx context.Context, ids []string) error {
	return del(ctx, c, "/api/users", nil, model.UserIDsRequest{UserIDs: ids})
}

// ToggleUserStatus включает или выключает пользователей пакетом.
func (c *Client) ToggleUserStatus(ctx context.Context, ids []string, active bool) error {
	_, err := put[struct{}](ctx, c, "/api/users/status", model.ToggleUserStatusRequest{UserIDs: ids, IsActive: active})
	return err
}

// AssignRole назначает пользователю роль.
func (c *Client) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := post[struct{}](ctx, c, "/api/users/assign-role", model.AssignRoleRequest{UserID: userID, RoleID: roleID})
	return err
}

// AssignRoles заменяет набор ролей пользователя.
func (c *Client) AssignRoles(ctx context.Context, userID string, roleIDs []string) error {
	_, err := post[struct{}](ctx, c, "/api/users/assign-roles-batch", model.AssignRolesRequest{UserID: userID, RoleIDs: roleIDs})
	return err
}

// RemoveRole снимает роль с пользователя.
func (c *Client) RemoveRole(ctx context.Context, userID, roleID string) error {
	return del(ctx, c, "/api/users/remove-role", map[string]string{"userId": userID, "roleId": roleID}, nil)
}

// UserRoles возвращает роли пользователя.
func (c *Client) UserRoles(ctx context.Context, userID string) ([]model.Role, error) {
	return get[[]model.Role](ctx, c, "/api/users/roles", map[string]string{"userId": userID})
}

// UserPermissions возвращает итоговые права пользователя (через роли).
func (c *Client) UserPermissions(ctx context.Context, userID string) ([]model.Permission, error) {
	return get[[]model.Permission](ctx, c, "/api/users/permissions", map[string]string{"userId": userID})
}

// CheckPermission проверяет наличие права action:resource.
func (c *Client) CheckPermission(ctx context.Context, userID, action, resource string) (bool, error) {
	res, err := get[struct {
		HasPermission bool `json:"hasPermission"`
	}](ctx, c, "/api/users/check-permission", map[string]string{"userId": userID, "action": action, "resource": resource})
	return res.HasPermission, err
}

// CheckRole проверяет наличие роли с кодом roleCode.
func (c *Client) CheckRole(ctx context.Context, userID, roleCode string) (bool, error) {
	res, err := get[struct {
		HasRole bool `json:"hasRole"`
	}](ctx, c, "/api/users/check-role", map[string]string{"userId": userID, "roleCode": roleCode})
	return res.HasRole, err
}

// ptr превращает (T, error) в (*T, error), отбрасывая значение при ошибке.
func ptr[T any](v T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return &v, nil
}
