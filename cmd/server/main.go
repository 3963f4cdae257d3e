package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"cheeseshop/internal/config"
	"cheeseshop/internal/handlers"
	"cheeseshop/internal/metrics"
	"cheeseshop/internal/middlewares"
	"cheeseshop/internal/storage"
)

// main 为目录服务入口：加载配置、初始化日志/存储、注册路由并启动 HTTP 服务。
func main() {
	cfg := config.Load()
	setupLogging(cfg.Log)

	// 生产环境基线检查：禁止默认数据库口令与单机 SQLite 进入生产。
	if cfg.Env == "prod" {
		if cfg.Database.Driver == config.DriverSQLite {
			log.Fatal("sqlite is not supported in prod; configure database.driver mysql or postgres")
		}
		if cfg.Database.Password == "123456" || cfg.Database.Password == "password" || cfg.Database.Password == "" {
			log.Fatal("insecure database password in prod; configure database.password in config.yaml")
		}
		if strings.Contains(cfg.Database.User, "root") {
			log.Warn("using database root user in prod is discouraged")
		}
	}
	log.WithFields(log.Fields{
		"env":        cfg.Env,
		"http_addr":  cfg.HTTPAddr,
		"db_driver":  cfg.Database.Driver,
		"db_dsn":     cfg.Database.DSNMasked(),
		"redis_addr": cfg.Redis.Addr,
	}).Info("configuration loaded")

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	defer storage.Close(db)

	rdb, err := storage.InitRedis(cfg.Redis)
	if err != nil {
		// Redis 仅用于限流，不可用时降级运行
		log.WithError(err).Warn("redis unavailable; write rate limiting disabled")
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// HTTP 路由与中间件
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.SecurityHeaders(cfg.Security))
	router.Use(metrics.Handler())

	handlers.New(cfg, db, rdb).RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// 优雅退出
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	} else {
		log.Info("server stopped")
	}
}

// setupLogging 配置结构化日志格式与级别。
func setupLogging(lc config.LogConfig) {
	if strings.EqualFold(lc.Format, "text") {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	log.SetOutput(os.Stdout)
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
