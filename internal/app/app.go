// Package app 组装 cmd/* 共用的依赖：数据库、缓存、JWT、仓储、服务。
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/core/cache"
	"finance-tracker/internal/core/config"
	"finance-tracker/internal/core/database"
	"finance-tracker/internal/core/logger"
	"finance-tracker/internal/repo"
	"finance-tracker/internal/service"
	"finance-tracker/internal/transport/http/router"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Auth   *service.AuthService
	Tx     *service.TransactionService
	Gate   *auth.Gate

	closers []func()
}

// OpenDB 按配置连接数据库，auto_migrate 开启时顺带建表
func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))

	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return db, nil
}

// New 组装全部依赖。redis 未开启或连不上时汇总接口直接查库
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	db, err := OpenDB(cfg, l)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: l, DB: db}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.TokenTTL(),
	}
	users := repo.NewUserRepo(db)
	a.Gate = auth.NewGate(jwter, users)
	a.Auth = service.NewAuthService(users, jwter, cfg.Security.BcryptCost, l)

	var summaries service.SummaryCache
	if cfg.Redis.Enabled {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, l)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		perr := c.Ping(pctx)
		cancel()
		if perr != nil {
			l.Warn("redis unreachable, summary cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(perr))
			_ = c.Close()
		} else {
			summaries = cache.NewSummaries(c, cfg.SummaryTTL())
			a.closers = append(a.closers, func() { _ = c.Close() })
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}
	a.Tx = service.NewTransactionService(repo.NewTransactionRepo(db), summaries, l)
	return a, nil
}

func (a *App) Deps() router.Deps {
	return router.Deps{
		Log:    a.Log,
		Config: a.Config,
		Gate:   a.Gate,
		Auth:   a.Auth,
		Tx:     a.Tx,
		Ping:   func(ctx context.Context) error { return database.Ping(ctx, a.DB) },
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
