package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/internal/admincenter/biz"
	"github.com/kart-io/admin-guard/internal/model"
	"github.com/kart-io/admin-guard/internal/pkg/httputils"
	"github.com/kart-io/admin-guard/pkg/admin"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// UserHandler serves the user admin page. Every operation runs through the
// page's authorization hooks, so denied fields never leave or reach the
// storage layer.
type UserHandler struct {
	svc  *biz.UserService
	page *admin.SoftDeleteModelAdmin
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *biz.UserService, page *admin.SoftDeleteModelAdmin) *UserHandler {
	return &UserHandler{svc: svc, page: page}
}

// pagination reads offset/limit query parameters with sane bounds.
func pagination(c *gin.Context) (int, int) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return offset, limit
}

// queryFilter builds an exact-match filter from the whitelisted query
// parameters.
func queryFilter(c *gin.Context, keys ...string) map[string]interface{} {
	filter := make(map[string]interface{})
	for _, key := range keys {
		if value := c.Query(key); value != "" {
			filter[key] = value
		}
	}
	return filter
}

func itemIDs(c *gin.Context) []string {
	return strings.Split(c.Param("item_id"), ",")
}

// List lists users, stripping fields the subject may not see.
func (h *UserHandler) List(c *gin.Context) {
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

	filter, err := h.page.OnFilterPre(rc, queryFilter(c, "username", "email", "status"))
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
	httputils.WriteResponse(c, nil, &model.UserList{TotalCount: count, Items: items})
}

// Create creates a user from the permitted subset of the payload.
func (h *UserHandler) Create(c *gin.Context) {
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

// Update updates the given users with the permitted subset of the payload.
func (h *UserHandler) Update(c *gin.Context) {
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

// Delete soft-deletes the given users.
func (h *UserHandler) Delete(c *gin.Context) {
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

	if err := h.page.DeleteItems(c.Request.Context(), ids); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"deleted": ids})
}

// Table returns the list table definition visible to the subject.
func (h *UserHandler) Table(c *gin.Context) {
	rc := admin.GinRequestContext(c)
	table, err := h.page.ListTable(rc)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrDatabase.WithCause(err), nil)
		return
	}
	httputils.WriteResponse(c, nil, table)
}
