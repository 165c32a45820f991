package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/configs"
)

// CORSMiddleware CORS中间件.
// 未配置 cors_origins 时允许任意来源；AllowAllOrigins 与 AllowOrigins 不能同时设置.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"}
	config.ExposeHeaders = []string{"Content-Disposition", "Content-Length"}
	config.AllowFiles = true

	if len(cfg.CORSOrigins) == 0 || cfg.Debug {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.CORSOrigins
	}

	return cors.New(config)
}
