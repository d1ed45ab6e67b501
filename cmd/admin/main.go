package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"finance-tracker/internal/app"
	"finance-tracker/internal/core/config"
	"finance-tracker/internal/core/logger"
	"finance-tracker/internal/core/server"
	"finance-tracker/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, cleanup := logger.New(cfg.Log)
	defer cleanup()
	l = l.Named("admin")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// 路由（后台端），默认只监听 127.0.0.1
	r := router.NewAdminEngine(a.Deps())
	srv := server.BuildServer(server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port), r, 5*time.Second, 10*time.Second, 60*time.Second)
	srv.ErrorLog = logger.ToStdLogger(l.Named("http"), zap.ErrorLevel)

	if err := server.Run(ctx, srv, l); err != nil {
		l.Fatal("admin api FAILED", zap.Error(err))
	}
}
