package router

import (
	"github.com/gin-gonic/gin"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/transport/http/ez"
	"finance-tracker/internal/transport/http/handler"
	mdw "finance-tracker/internal/transport/http/middleware"
)

// NewAPIEngine 用户端路由，挂在 app.api_prefix 下
func NewAPIEngine(d Deps) *gin.Engine {
	r := base(d)
	debug := d.debug()
	api := r.Group(d.Config.App.APIPrefix)

	// 公共（无需登录）
	public := ez.New(api, debug)
	handler.NewMeta(d.Config.App.Env, d.Ping).Mount(public)
	authH := handler.NewAuth(d.Auth)
	authH.MountPublic(public)

	// 仅 bearer
	bearer := api.Group("", mdw.Authenticate(d.Gate, auth.BearerOnly, debug))
	authH.MountAuthed(ez.New(bearer, debug))
	txH := handler.NewTransactions(d.Tx)
	txH.Mount(ez.New(bearer, debug))

	// bearer 或 X-API-Token（脚本 / 机器人录入）
	either := api.Group("", mdw.Authenticate(d.Gate, auth.BearerOrAPIToken, debug))
	txH.MountCreate(ez.New(either, debug))

	return r
}
