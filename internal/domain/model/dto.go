package model

// Тела запросов REST API. Теги validate проверяются dev API
// (go-playground/validator); клиент их только сериализует.

// RegisterRequest — регистрация по email-коду.
type RegisterRequest struct {
	Email                 string `json:"email" validate:"required,email"`
	Name                  string `json:"name" validate:"required,max=100"`
	Password              string `json:"password" validate:"required,min=6"`
	EmailVerificationCode string `json:"emailVerificationCode" validate:"required,len=6"`
}

// CodeLoginRequest — вход по email-коду.
type CodeLoginRequest struct {
	Email                 string `json:"email" validate:"required,email"`
	EmailVerificationCode string `json:"emailVerificationCode" validate:"required,len=6"`
}

// PasswordLoginRequest — вход по паролю, зашифрованному ключом KeyID.
type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	KeyID    string `json:"keyId" validate:"required"`
}

// LogoutRequest — завершение сессии.
type LogoutRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// RefreshTokenRequest — обмен refresh token на новую пару.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// EmailRequest — отправка кода на email.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreateUserRequest — создание пользователя администратором.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Name     string   `json:"name" validate:"required,max=100"`
	Password string   `json:"password" validate:"required,min=6"`
	IsActive *bool    `json:"isActive,omitempty"`
	RoleIDs  []string `json:"roleIds,omitempty"`
}

// UserIDsRequest — пакетное удаление пользователей.
type UserIDsRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,dive,required"`
}

// ToggleUserStatusRequest — пакетное включение/выключение.
type ToggleUserStatusRequest struct {
	UserIDs  []string `json:"userIds" validate:"required,min=1,dive,required"`
	IsActive bool     `json:"isActive"`
}

// AssignRoleRequest — назначение одной роли.
type AssignRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	RoleID string `json:"roleId" validate:"required"`
}

// AssignRolesRequest — назначение набора ролей.
type AssignRolesRequest struct {
	UserID  string   `json:"userId" validate:"required"`
	RoleIDs []string `json:"roleIds" validate:"required,dive,required"`
}

// RoleInput — создание/изменение роли. ID заполняется только при изменении.
type RoleInput struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required,max=100"`
	Code        string  `json:"code" validate:"required,max=50"`
	Description *string `json:"description,omitempty"`
}

// AssignPermissionsRequest — назначение прав роли.
type AssignPermissionsRequest struct {
	RoleID        string   `json:"roleId" validate:"required"`
	PermissionIDs []string `json:"permissionIds" validate:"required,dive,required"`
}

// PermissionInput — создание/изменение права. ID заполняется только при изменении.
type PermissionInput struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name" validate:"required,max=100"`
	Type        string  `json:"type,omitempty" validate:"omitempty,oneof=menu button api"`
	Action      string  `json:"action" validate:"required,max=50"`
	Resource    string  `json:"resource" validate:"required,max=100"`
	ParentID    *string `json:"parentId,omitempty"`
	Path        string  `json:"path,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Sort        int     `json:"sort,omitempty"`
	Description *string `json:"description,omitempty"`
}
