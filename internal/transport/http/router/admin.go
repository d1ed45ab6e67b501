package router

import (
	"github.com/gin-gonic/gin"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/domain"
	"finance-tracker/internal/transport/http/ez"
	"finance-tracker/internal/transport/http/handler"
	mdw "finance-tracker/internal/transport/http/middleware"
)

// NewAdminEngine 管理端路由；/admin/v1 统一要求 bearer + admin 角色
func NewAdminEngine(d Deps) *gin.Engine {
	r := base(d)
	debug := d.debug()

	admin := r.Group("/admin/v1",
		mdw.Authenticate(d.Gate, auth.BearerOnly, debug),
		mdw.RequireRole(domain.RoleAdmin),
	)
	handler.NewAdmin(d.Auth).Mount(ez.New(admin, debug))
	return r
}
