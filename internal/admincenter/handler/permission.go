package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/pkg/httputils"
	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// PageResolver resolves admin pages by their unique id.
type PageResolver interface {
	ModelAdminByID(id string) *admin.ModelAdmin
}

// PermissionHandler serves the permission management endpoints.
type PermissionHandler struct {
	svc   *biz.PermissionService
	pages PageResolver
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(svc *biz.PermissionService, pages PageResolver) *PermissionHandler {
	return &PermissionHandler{svc: svc, pages: pages}
}

// requireRoot gates permission mutations to the root identity.
func requireRoot(c *gin.Context) bool {
	if admin.GinRequestContext(c).Subject() != admin.UserRoot {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return false
	}
	return true
}

// Options returns the permission tree visible to the current subject.
func (h *PermissionHandler) Options(c *gin.Context) {
	options, err := h.svc.Options(admin.GinRequestContext(c).Subject())
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, options)
}

// SubjectPermissions lists the permissions of a subject. Subjects may view
// their own grants; everything else needs root.
func (h *PermissionHandler) SubjectPermissions(c *gin.Context) {
	subject := c.Param("subject")
	caller := admin.GinRequestContext(c).Subject()
	if caller != admin.UserRoot && caller != subject {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	permissions, err := h.svc.SubjectPermissions(subject)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"subject": subject, "permissions": permissions})
}

// UpdatePermissionsRequest is the request body for permission replacement.
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// UpdateSubjectPermissions replaces the direct permissions of a subject.
func (h *PermissionHandler) UpdateSubjectPermissions(c *gin.Context) {
	if !requireRoot(c) {
		return
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	accepted, err := h.svc.UpdateSubjectPermissions(c.Param("subject"), req.Permissions)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"permissions": accepted})
}

// UpdateRolePermissions replaces the direct permissions of a role.
func (h *PermissionHandler) UpdateRolePermissions(c *gin.Context) {
	if !requireRoot(c) {
		return
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	accepted, err := h.svc.UpdateRolePermissions(c.Param("key"), req.Permissions)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"permissions": accepted})
}

// SubjectRoles lists the role keys of a subject.
func (h *PermissionHandler) SubjectRoles(c *gin.Context) {
	subject := c.Param("subject")
	caller := admin.GinRequestContext(c).Subject()
	if caller != admin.UserRoot && caller != subject {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	roles, err := h.svc.SubjectRoles(subject)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"subject": subject, "roles": roles})
}

// UpdateRolesRequest is the request body for role replacement.
type UpdateRolesRequest struct {
	// Roles is a comma-separated list of role keys.
	Roles string `json:"roles"`
}

// UpdateSubjectRoles replaces the roles of a subject.
func (h *PermissionHandler) UpdateSubjectRoles(c *gin.Context) {
	if !requireRoot(c) {
		return
	}

	var req UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	if err := h.svc.UpdateSubjectRoles(c.Param("subject"), req.Roles); err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"roles": req.Roles})
}

// ActionFields returns the field-permission rows of a page action, for the
// permission form.
func (h *PermissionHandler) ActionFields(c *gin.Context) {
	if !requireRoot(c) {
		return
	}

	page := h.pages.ModelAdminByID(c.Param("id"))
	if page == nil {
		httputils.WriteResponse(c, errors.ErrNotFound.WithMessage("unknown page"), nil)
		return
	}
	httputils.WriteResponse(c, nil, page.ActionFieldsRows(c.Param("action")))
}
