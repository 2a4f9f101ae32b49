package handlers

import (
	"net/http"

	"github.com/bigkaa/goartstore/admin-console/internal/api/middleware"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// ListUsers — GET /api/users.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query, ok := listQuery(w, r)
	if !ok {
		return
	}
	var isActive *bool
	if !bindOptional(w, r, map[string]any{"isActive": &isActive}) {
		return
	}
	list, err := h.users.List(r.Context(), query, isActive)
	h.respond(w, r, list, err)
}

// CurrentUser — GET /api/users/me.
func (h *APIHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.SubjectFromContext(r.Context()))
	h.respond(w, r, user, err)
}

// CreateUser — POST /api/users.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.users.Create(r.Context(), req)
	h.respond(w, r, user, err)
}

// DeleteUsers — DELETE /api/users.
func (h *APIHandler) DeleteUsers(w http.ResponseWriter, r *http.Request) {
	var req model.UserIDsRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.users.Delete(r.Context(), req.UserIDs))
}

// ToggleUserStatus — PUT /api/users/status.
func (h *APIHandler) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	var req model.ToggleUserStatusRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.users.SetActive(r.Context(), req.UserIDs, req.IsActive))
}

// AssignRole — POST /api/users/assign-role.
func (h *APIHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req model.AssignRoleRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.users.AssignRole(r.Context(), req.UserID, req.RoleID))
}

// AssignRoles — POST /api/users/assign-roles-batch.
func (h *APIHandler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	var req model.AssignRolesRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.users.AssignRoles(r.Context(), req.UserID, req.RoleIDs))
}

// RemoveRole — DELETE /api/users/remove-role?userId=&roleId=.
func (h *APIHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	roleID, ok := requireQuery(w, r, "roleId")
	if !ok {
		return
	}
	h.respond(w, r, nil, h.users.RemoveRole(r.Context(), userID, roleID))
}

// UserRoles — GET /api/users/roles?userId=.
func (h *APIHandler) UserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	roles, err := h.users.Roles(r.Context(), userID)
	h.respond(w, r, roles, err)
}

// UserPermissions — GET /api/users/permissions?userId=.
func (h *APIHandler) UserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	perms, err := h.users.Permissions(r.Context(), userID)
	h.respond(w, r, perms, err)
}

// CheckPermission — GET /api/users/check-permission?userId=&action=&resource=.
func (h *APIHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	action, ok := requireQuery(w, r, "action")
	if !ok {
		return
	}
	resource, ok := requireQuery(w, r, "resource")
	if !ok {
		return
	}
	has, err := h.users.HasPermission(r.Context(), userID, action, resource)
	h.respond(w, r, map[string]bool{"hasPermission": has}, err)
}

// CheckRole — GET /api/users/check-role?userId=&roleCode=.
func (h *APIHandler) CheckRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "userId")
	if !ok {
		return
	}
	code, ok := requireQuery(w, r, "roleCode")
	if !ok {
		return
	}
	has, err := h.users.HasRole(r.Context(), userID, code)
	h.respond(w, r, map[string]bool{"hasRole": has}, err)
}
