package middlewares

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"cheeseshop/internal/storage"
)

const dbSessionKey = "db_session"

// DBSession 为每个请求签出独立的数据库会话，并在请求结束时释放（包括 panic 被 Recovery 捕获的情况）。
func DBSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, release, err := storage.AcquireSession(c.Request.Context(), db)
		if err != nil {
			log.WithError(err).Error("acquire db session")
			c.AbortWithStatusJSON(503, gin.H{"detail": "Database unavailable"})
			return
		}
		defer release()
		c.Set(dbSessionKey, sess)
		c.Next()
	}
}

// Session 返回当前请求的数据库会话；未挂载 DBSession 时返回 nil。
func Session(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(dbSessionKey); ok {
		if sess, ok := v.(*gorm.DB); ok {
			return sess
		}
	}
	return nil
}
