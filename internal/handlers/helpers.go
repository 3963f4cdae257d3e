package handlers

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cheeseshop/internal/metrics"
	"cheeseshop/internal/middlewares"
	"cheeseshop/internal/services"
	"cheeseshop/internal/storage"
)

// session 返回当前请求的数据库会话；路由未挂载 DBSession 时退回连接池。
func (h *Handler) session(c *gin.Context) *gorm.DB {
	if sess := middlewares.Session(c); sess != nil {
		return sess
	}
	return h.db.WithContext(c)
}

// detail 以 {"detail": msg} 形式输出错误响应。
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// reject 输出客户端错误并记录被拒绝写入的指标。
func reject(c *gin.Context, entity, reason string, status int, msg string) {
	metrics.WritesRejected.WithLabelValues(entity, reason).Inc()
	detail(c, status, msg)
}

// internalError 记录存储层故障并返回 500（不向客户端暴露内部错误）。
func internalError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	log.WithError(err).WithField("request_id", c.GetString(middlewares.RequestIDKey)).Error(msg)
	detail(c, 500, "Internal server error")
}

// audit 以当前请求的会话写入审计日志。
func (h *Handler) audit(c *gin.Context, event string, id uint64, desc string) {
	services.NewLogService(h.session(c)).Write(c, event, id, desc, c.ClientIP(), c.GetString(middlewares.RequestIDKey))
}

func cheeseTypeJSON(ct *storage.CheeseType) gin.H {
	return gin.H{"id": ct.ID, "name": ct.Name}
}

func cheeseJSON(ch *storage.Cheese) gin.H {
	return gin.H{
		"id":             ch.ID,
		"title":          ch.Title,
		"cheese_type_id": ch.CheeseTypeID,
		"packaging_type": ch.PackagingType,
	}
}
