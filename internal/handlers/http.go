package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"cheeseshop/internal/config"
	"cheeseshop/internal/metrics"
	"cheeseshop/internal/middlewares"
	"cheeseshop/internal/storage"
)

// Handler 聚合所有依赖（配置、数据库连接池、Redis）并注册所有 HTTP 路由。
// 领域服务按请求构造在各自的数据库会话上。
type Handler struct {
	cfg config.Config
	db  *gorm.DB
	rdb *redis.Client
}

// New 构造 Handler；rdb 可为 nil，此时写接口不限流。
func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) *Handler {
	return &Handler{cfg: cfg, db: db, rdb: rdb}
}

// RegisterRoutes 在 Gin 路由上挂载目录端点与运维端点。
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	session := middlewares.DBSession(h.db)
	write := h.writeLimit()

	r.GET("/", h.root)

	// 奶酪类别
	r.GET("/cheese_types/", session, h.listCheeseTypes)
	r.POST("/cheese_types/", write, session, h.createCheeseType)

	// 奶酪条目
	r.GET("/cheese/", session, h.listCheese)
	r.GET("/cheese/:id/", session, h.getCheese)
	r.POST("/cheese/", write, session, h.createCheese)

	// 运维端点
	r.GET("/metrics", h.metrics)
	r.GET("/healthz", h.healthz)
}

// writeLimit 为写接口构造按客户端 IP 的限流中间件；未配置 Redis 时直接放行。
func (h *Handler) writeLimit() gin.HandlerFunc {
	if h.rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}
	window := h.cfg.Limits.Window
	if window <= 0 {
		window = time.Minute
	}
	return middlewares.RateLimit(h.rdb, "write", h.cfg.Limits.WritePerMinute, window, func(c *gin.Context) string { return c.ClientIP() })
}

func (h *Handler) root(c *gin.Context) { c.JSON(200, gin.H{"message": "Hello World"}) }

func (h *Handler) metrics(c *gin.Context) { metrics.Exposer()(c) }

// healthz 检查数据库连接池是否可用。
func (h *Handler) healthz(c *gin.Context) {
	if err := storage.Ping(h.db); err != nil {
		c.JSON(503, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
