package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/handle"
	"github.com/yeisme/flarecloud/pkg/middleware"
)

// RegisterFilesRoutes 注册文件操作相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup, cfg *configs.AppConfig) {
	g.POST("/upload",
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.BodyLimitMiddleware(cfg.Storage.MaxUploadSize),
		handle.UploadFile,
	)

	filesRoutes := g.Group("/files")
	{
		// 列表可能很长，单独压缩；下载保持原样以支持 Range
		filesRoutes.GET("", gzip.Gzip(gzip.DefaultCompression), handle.ListFiles)

		singleGroup := filesRoutes.Group("/:filename")
		{
			singleGroup.GET("", handle.DownloadFile)
			singleGroup.GET("/details", handle.FileDetails)
			singleGroup.DELETE("", handle.DeleteFile)
		}
	}
}
