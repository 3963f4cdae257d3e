package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cheeseshop/internal/config"
)

// SecurityHeaders 设置通用的安全相关响应头（HSTS 受配置控制）。
func SecurityHeaders(cfg config.SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		// 仅在 HTTPS（直连或反代）下发送 Strict-Transport-Security
		if (c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https") && cfg.HSTS.Enabled {
			v := fmt.Sprintf("max-age=%d", cfg.HSTS.MaxAgeSeconds)
			if cfg.HSTS.IncludeSubdomains {
				v += "; includeSubDomains"
			}
			c.Header("Strict-Transport-Security", v)
		}
		c.Next()
	}
}
