package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/core/config"
	"finance-tracker/internal/core/server"
	"finance-tracker/internal/service"
	"finance-tracker/internal/transport/http/handler"
	mdw "finance-tracker/internal/transport/http/middleware"
)

// Deps 路由依赖（由 cmd 组装）
type Deps struct {
	Log    *zap.Logger
	Config *config.Config
	Gate   *auth.Gate
	Auth   *service.AuthService
	Tx     *service.TransactionService
	Ping   handler.Pinger
}

func (d Deps) debug() bool { return !d.Config.IsProduction() }

// base 公共中间件 + /health + /metrics。限值 <= 0 时不挂对应防护
func base(d Deps) *gin.Engine {
	lim := d.Config.App.Limits
	r := server.NewRouter(server.Options{CORSOrigins: d.Config.App.CORSOrigins})

	r.Use(
		mdw.RequestID(),
		mdw.Recovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}
	if lim.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxInFlight, time.Duration(lim.MaxQueueWaitMs)*time.Millisecond))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.RequestTimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.RequestTimeoutSec) * time.Second))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
