// seed 创建首个管理员账号（seed.admin_email / seed.admin_password）。
// 已存在管理员时什么都不做；邮箱已注册为普通用户时提升为管理员。
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"finance-tracker/internal/app"
	"finance-tracker/internal/core/config"
	"finance-tracker/internal/core/logger"
	"finance-tracker/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, cleanup := logger.New(cfg.Log)
	defer cleanup()
	l = l.Named("seed")

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		l.Fatal("seed.admin_email and seed.admin_password must be set (APP_SEED_ADMIN_EMAIL / APP_SEED_ADMIN_PASSWORD)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, l)
	if err != nil {
		l.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	u, created, err := a.Auth.SeedAdmin(ctx, service.RegisterInput{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	})
	if err != nil {
		l.Fatal("seed failed", zap.Error(err))
	}
	if u == nil {
		l.Info("admin already present, nothing to do")
		return
	}
	l.Info("admin ready", zap.String("id", u.ID), zap.String("email", u.Email), zap.Bool("created", created))
}
