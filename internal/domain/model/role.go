package model

import "time"

// Role — роль RBAC.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Code — уникальный машинный код роли (admin, editor)
	Code        string  `json:"code"`
	Description *string `json:"description"`
	// IsSystem — встроенная роль, удаление запрещено
	IsSystem  bool      `json:"isSystem"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleList — страница списка ролей.
type RoleList struct {
	Roles []Role `json:"roles"`
	Total int    `json:"total"`
}

// RoleDetail — роль вместе с её правами.
type RoleDetail struct {
	Role
	Permissions []Permission `json:"permissions"`
}
