package handlers

import (
	"net/http"

	apierrors "github.com/bigkaa/goartstore/admin-console/internal/api/errors"
	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
)

// ListPermissions — GET /api/permissions.
func (h *APIHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	query, ok := listQuery(w, r)
	if !ok {
		return
	}
	action, ok := optionalQuery(w, r, "action")
	if !ok {
		return
	}
	resource, ok := optionalQuery(w, r, "resource")
	if !ok {
		return
	}
	list, err := h.permissions.List(r.Context(), query, action, resource)
	h.respond(w, r, list, err)
}

// CreatePermission — POST /api/permissions.
func (h *APIHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var in model.PermissionInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.permissions.Create(r.Context(), in)
	h.respond(w, r, p, err)
}

// UpdatePermission — PUT /api/permissions, id в теле.
func (h *APIHandler) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	var in model.PermissionInput
	if !decode(w, r, &in) {
		return
	}
	if in.ID == "" {
		apierrors.InvalidParameter(w, "缺少参数 id")
		return
	}
	p, err := h.permissions.Update(r.Context(), in)
	h.respond(w, r, p, err)
}

// DeletePermission — DELETE /api/permissions?id=.
func (h *APIHandler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := requireQuery(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r, nil, h.permissions.Delete(r.Context(), id))
}

// PermissionDetail — GET /api/permissions/detail?id=.
func (h *APIHandler) PermissionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := requireQuery(w, r, "id")
	if !ok {
		return
	}
	p, err := h.permissions.Detail(r.Context(), id)
	h.respond(w, r, p, err)
}

// SearchPermissions — GET /api/permissions/search?keyword=.
func (h *APIHandler) SearchPermissions(w http.ResponseWriter, r *http.Request) {
	keyword, ok := optionalQuery(w, r, "keyword")
	if !ok {
		return
	}
	list, err := h.permissions.Search(r.Context(), keyword)
	h.respond(w, r, list, err)
}

// PermissionActions — GET /api/permissions/actions.
func (h *APIHandler) PermissionActions(w http.ResponseWriter, r *http.Request) {
	list, err := h.permissions.Actions(r.Context())
	h.respond(w, r, list, err)
}

// PermissionResources — GET /api/permissions/resources.
func (h *APIHandler) PermissionResources(w http.ResponseWriter, r *http.Request) {
	list, err := h.permissions.Resources(r.Context())
	h.respond(w, r, list, err)
}

// PermissionsByAction — GET /api/permissions/by-action?action=.
func (h *APIHandler) PermissionsByAction(w http.ResponseWriter, r *http.Request) {
	action, ok := requireQuery(w, r, "action")
	if !ok {
		return
	}
	list, err := h.permissions.ByAction(r.Context(), action)
	h.respond(w, r, list, err)
}

// PermissionsByResource — GET /api/permissions/by-resource?resource=.
func (h *APIHandler) PermissionsByResource(w http.ResponseWriter, r *http.Request) {
	resource, ok := requireQuery(w, r, "resource")
	if !ok {
		return
	}
	list, err := h.permissions.ByResource(r.Context(), resource)
	h.respond(w, r, list, err)
}

// PermissionTree — GET /api/permissions/tree.
func (h *APIHandler) PermissionTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.permissions.Tree(r.Context())
	h.respond(w, r, tree, err)
}
