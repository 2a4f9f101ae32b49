// Пакет model — доменные модели админки: пользователи, роли, права.
// JSON-теги совпадают с форматом REST API, поэтому модели используются
// и dev API, и клиентом.
package model

import "time"

// User — учётная запись пользователя.
type User struct {
	// ID — UUID пользователя
	ID string `json:"id"`
	// Email — адрес, он же логин
	Email string `json:"email"`
	// Name — отображаемое имя
	Name string `json:"name"`
	// PasswordHash — bcrypt-хэш пароля, наружу не отдаётся
	PasswordHash string `json:"-"`
	// EmailVerified — подтверждён ли email
	EmailVerified bool `json:"emailVerified"`
	// Preferences — пользовательские настройки
	Preferences map[string]any `json:"preferences"`
	// LastLoginIP — IP последнего входа
	LastLoginIP string `json:"lastLoginIp"`
	// LastLoginAt — время последнего входа (nil — ещё не входил)
	LastLoginAt *time.Time `json:"lastLoginAt"`
	// LoginCount — количество входов
	LoginCount int `json:"loginCount"`
	// IsActive — активна ли учётная запись
	IsActive bool `json:"isActive"`
	// Roles — роли пользователя (заполняется в списках)
	Roles []Role `json:"roles,omitempty"`
	// AccessToken — выдаётся только в ответах входа и регистрации
	AccessToken string `json:"accessToken,omitempty"`
	// RefreshToken — выдаётся только в ответах входа
	RefreshToken string `json:"refreshToken,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserList — страница списка пользователей.
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// EncryptionKey — одноразовый ключ шифрования пароля при входе.
type EncryptionKey struct {
	// Key — AES-ключ в hex
	Key string `json:"key"`
	// KeyID — идентификатор ключа для сервера
	KeyID string `json:"keyId"`
	// ExpiresAt — момент, после которого сервер ответит KEY_EXPIRED
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenPair — пара токенов после обновления.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
