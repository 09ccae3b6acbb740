package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/pkg/httputils"
	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// RoleHandler serves the role admin page.
type RoleHandler struct {
	svc  *biz.RoleService
	page *admin.AutoTimeModelAdmin
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(svc *biz.RoleService, page *admin.AutoTimeModelAdmin) *RoleHandler {
	return &RoleHandler{svc: svc, page: page}
}

// List lists roles, stripping fields the subject may not see.
func (h *RoleHandler) List(c *gin.Context) {
	rc := admin.GinRequestContext(c)

	allowed, err := h.page.HasActionPermission(rc, admin.ActionList)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if !allowed {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	filter, err := h.page.OnFilterPre(rc, queryFilter(c, "key", "name", "status"))
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}

	offset, limit := pagination(c)
	count, items, err := h.svc.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	items, err = h.page.OnListAfter(rc, items)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"totalCount": count, "items": items})
}

// Create creates a role from the permitted subset of the payload.
func (h *RoleHandler) Create(c *gin.Context) {
	rc := admin.GinRequestContext(c)

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	allowed, err := h.page.HasCreatePermission(rc, payload)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if !allowed {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	values, err := h.page.OnCreatePre(rc, payload)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if err := h.svc.Create(c.Request.Context(), values); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, values)
}

// Update updates the given roles with the permitted subset of the payload.
func (h *RoleHandler) Update(c *gin.Context) {
	rc := admin.GinRequestContext(c)
	ids := itemIDs(c)

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	allowed, err := h.page.HasUpdatePermission(rc, ids, payload)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if !allowed {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	values, err := h.page.OnUpdatePre(rc, payload, ids)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if err := h.svc.Update(c.Request.Context(), ids, values); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, values)
}

// Delete removes the given roles.
func (h *RoleHandler) Delete(c *gin.Context) {
	rc := admin.GinRequestContext(c)
	ids := itemIDs(c)

	allowed, err := h.page.HasDeletePermission(rc, ids)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	if !allowed {
		httputils.WriteResponse(c, errors.ErrNoPermission, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), ids); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"deleted": ids})
}
