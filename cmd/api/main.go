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

	// 路由（用户端）
	r := router.NewAPIEngine(a.Deps())
	h := cfg.App.HTTP
	srv := server.BuildServer(
		server.Addr(h.Host, h.Port), r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)
	srv.ErrorLog = logger.ToStdLogger(l.Named("http"), zap.ErrorLevel)

	l.Info("finance api starting",
		zap.String("env", cfg.App.Env),
		zap.String("prefix", cfg.App.APIPrefix),
		zap.Bool("summary_cache", cfg.Redis.Enabled),
	)
	if err := server.Run(ctx, srv, l); err != nil {
		l.Fatal("finance api FAILED", zap.Error(err))
	}
}
