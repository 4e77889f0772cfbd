package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/auth"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/observability"
	"Gin_postgres_redis_inventory/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ServiceName = "inventario"

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Config   config.Config
	Log      *zap.Logger
	Repo     *db.Repo
	Auth     *auth.Service
	Sessions *session.Store

	shutdownTracing func(context.Context) error
}

// New 连接 Postgres 与 Redis 后组装 App
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	shutdown := observability.InitTracing(ctx, cfg, ServiceName, log)

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	a := Assemble(cfg, log, dbConn, rdb)
	a.shutdownTracing = shutdown
	return a, nil
}

// Assemble 用现成的连接组装 App（测试里传 sqlite + miniredis）
func Assemble(cfg config.Config, log *zap.Logger, dbConn *gorm.DB, rdb *redis.Client) *App {
	if log == nil {
		log = zap.NewNop()
	}
	repo := db.NewRepo(dbConn, log.Named("repo"))

	r := gin.New()
	r.Use(Recovery(log))
	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware(ServiceName))
	}
	r.Use(AttachRequestID())
	r.Use(RequestLogger(log.Named("http")))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		DB:       dbConn,
		RDB:      rdb,
		Config:   cfg,
		Log:      log,
		Repo:     repo,
		Auth:     auth.NewService(repo, cfg.LoginPerMin, log.Named("auth")),
		Sessions: session.NewStore(rdb, cfg.SessionTTL),
	}
}

// SecureCookie 前端走 https 时 cookie 加 Secure
func (a *App) SecureCookie() bool { return strings.HasPrefix(a.Config.WebOrigin, "https://") }

func (a *App) Close() {
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			a.Log.Warn("otel shutdown", zap.Error(err))
		}
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
