// Package router provides admin center routing.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/admin-guard/internal/admincenter/handler"
	"github.com/kart-io/admin-guard/pkg/middleware"
)

// Handlers groups the handlers registered on the engine. UserRead and
// RoleRead are the read routes of the respective admin pages.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Role       *handler.RoleHandler
	Permission *handler.PermissionHandler
	UserRead   gin.HandlerFunc
	RoleRead   gin.HandlerFunc
}

// New builds the gin engine with the full middleware chain and routes.
func New(jwtSecret string, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Subject(jwtSecret),
	)

	auth := engine.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)

		auth.GET("/site/options", h.Permission.Options)
		auth.GET("/subjects/:subject/permissions", h.Permission.SubjectPermissions)
		auth.PUT("/subjects/:subject/permissions", h.Permission.UpdateSubjectPermissions)
		auth.GET("/subjects/:subject/roles", h.Permission.SubjectRoles)
		auth.PUT("/subjects/:subject/roles", h.Permission.UpdateSubjectRoles)
		auth.PUT("/roles/:key/permissions", h.Permission.UpdateRolePermissions)
		auth.GET("/pages/:id/actions/:action/fields", h.Permission.ActionFields)
	}

	v1 := engine.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.GET("", h.User.List)
			users.GET("/table", h.User.Table)
			users.POST("", h.User.Create)
			users.GET("/item/:item_id", h.UserRead)
			users.PUT("/item/:item_id", h.User.Update)
			users.DELETE("/item/:item_id", h.User.Delete)
		}

		roles := v1.Group("/roles")
		{
			roles.GET("", h.Role.List)
			roles.POST("", h.Role.Create)
			roles.GET("/item/:item_id", h.RoleRead)
			roles.PUT("/item/:item_id", h.Role.Update)
			roles.DELETE("/item/:item_id", h.Role.Delete)
		}
	}

	return engine
}
