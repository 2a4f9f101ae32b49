package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// ListRoles — GET /api/roles.
func (h *APIHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	query, ok := listQuery(w, r)
	if !ok {
		return
	}
	list, err := h.roles.List(r.Context(), query)
	h.respond(w, r, list, err)
}

// CreateRole — POST /api/roles.
func (h *APIHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var in model.RoleInput
	if !decode(w, r, &in) {
		return
	}
	role, err := h.roles.Create(r.Context(), in)
	h.respond(w, r, role, err)
}

// UpdateRole — PUT /api/roles, id в теле.
func (h *APIHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var in model.RoleInput
	if !decode(w, r, &in) {
		return
	}
	if in.ID == "" {
		apierrors.InvalidParameter(w, "缺少参数 id")
		return
	}
	role, err := h.roles.Update(r.Context(), in)
	h.respond(w, r, role, err)
}

// DeleteRole — DELETE /api/roles?id=.
func (h *APIHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := requireQuery(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r, nil, h.roles.Delete(r.Context(), id))
}

// RoleDetail — GET /api/roles/detail?id=.
func (h *APIHandler) RoleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := requireQuery(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.roles.Detail(r.Context(), id)
	h.respond(w, r, detail, err)
}

// RoleByCode — GET /api/roles/by-code?code=.
func (h *APIHandler) RoleByCode(w http.ResponseWriter, r *http.Request) {
	code, ok := requireQuery(w, r, "code")
	if !ok {
		return
	}
	role, err := h.roles.ByCode(r.Context(), code)
	h.respond(w, r, role, err)
}

// AssignPermissions — POST /api/roles/assign-permissions.
func (h *APIHandler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	var req model.AssignPermissionsRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, nil, h.roles.AssignPermissions(r.Context(), req.RoleID, req.PermissionIDs))
}

// RolePermissions — GET /api/roles/permissions?roleId=.
func (h *APIHandler) RolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := requireQuery(w, r, "roleId")
	if !ok {
		return
	}
	perms, err := h.roles.Permissions(r.Context(), roleID)
	h.respond(w, r, perms, err)
}

// RemovePermission — DELETE /api/roles/remove-permission?roleId=&permissionId=.
func (h *APIHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := requireQuery(w, r, "roleId")
	if !ok {
		return
	}
	permissionID, ok := requireQuery(w, r, "permissionId")
	if !ok {
		return
	}
	h.respond(w, r, nil, h.roles.RemovePermission(r.Context(), roleID, permissionID))
}
