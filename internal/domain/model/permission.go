package model

import "time"

// Типы прав.
const (
	PermissionTypeMenu   = "menu"
	PermissionTypeButton = "button"
	PermissionTypeAPI    = "api"
)

// Permission — право доступа (action над resource).
// Права образуют дерево меню через ParentID.
type Permission struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Action   string `json:"action"`
	Resource string `json:"resource"`
	// ParentID — родитель в дереве (nil — корень)
	ParentID *string `json:"parentId"`
	// Level — глубина в дереве, вычисляется при построении
	Level       int           `json:"level"`
	Path        string        `json:"path"`
	Icon        string        `json:"icon"`
	Sort        int           `json:"sort"`
	Visible     bool          `json:"visible"`
	Status      int           `json:"status"`
	Description *string       `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Children    []*Permission `json:"children,omitempty"`
}

// PermissionList — страница списка прав.
type PermissionList struct {
	Permissions []Permission `json:"permissions"`
	Total       int          `json:"total"`
}

// Health — ответ проверки здоровья API.
type Health struct {
	Service   string         `json:"service"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Version   string         `json:"version"`
	Database  map[string]any `json:"database"`
	System    map[string]any `json:"system"`
}
