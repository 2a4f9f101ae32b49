package session

import "github.com/bigkaa/goartstore/admin-console/internal/validation"

// LoginForm — вход по паролю.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email" msg:"请输入有效的邮箱地址"`
	Password string `json:"password" validate:"required,min=6" msg:"密码至少需要6个字符"`
}

// CodeLoginForm — вход по коду из письма.
type CodeLoginForm struct {
	Email string `json:"email" validate:"required,email" msg:"请输入有效的邮箱地址"`
	Code  string `json:"code" validate:"required,vcode" msg:"验证码必须是6位数字"`
}

// RegisterForm — регистрация.
type RegisterForm struct {
	Email           string `json:"email" validate:"required,email" msg:"请输入有效的邮箱地址"`
	Password        string `json:"password" validate:"required,min=6" msg:"密码至少需要6个字符"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password" msg:"两次输入的密码不一致"`
	Code            string `json:"code" validate:"required,vcode" msg:"验证码必须是6位数字"`
}

// EmailForm — запрос кода на email.
type EmailForm struct {
	Email string `json:"email" validate:"required,email" msg:"请输入有效的邮箱地址"`
}

// Validate проверяет форму; ошибка — *validation.Error.
func (f LoginForm) Validate() error { return validation.Struct(f) }

// Validate проверяет форму; ошибка — *validation.Error.
func (f CodeLoginForm) Validate() error { return validation.Struct(f) }

// Validate проверяет форму; ошибка — *validation.Error.
func (f RegisterForm) Validate() error { return validation.Struct(f) }

// Validate проверяет форму; ошибка — *validation.Error.
func (f EmailForm) Validate() error { return validation.Struct(f) }
