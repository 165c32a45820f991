// Package router 管理路由配置，将路径与 handle 包中的处理器绑定到 gin 引擎.
//
//	POST   /upload                      -> handle.UploadFile
//	GET    /files                       -> handle.ListFiles
//	GET    /files/:filename             -> handle.DownloadFile
//	GET    /files/:filename/details     -> handle.FileDetails
//	DELETE /files/:filename             -> handle.DeleteFile
//	GET    /health                      -> handle.Health
//	GET    /scheduler/jobs              -> handle.SchedulerJobs
//	POST   /scheduler/jobs/:name/run    -> handle.SchedulerRunJob
//	GET    /swagger/*any                -> OpenAPI 文档（server.swagger 开启时）
//	*      其余路径                      -> server.static_dir 下的静态资源
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/flarecloud/pkg/configs"
	"github.com/yeisme/flarecloud/pkg/internal/types"
)

// Register 注册全部路由.
func Register(engine *gin.Engine, cfg *configs.AppConfig) {
	g := &engine.RouterGroup

	RegisterFilesRoutes(g, cfg)
	RegisterHealthCheckRoute(g)
	RegisterSchedulerRoutes(g)
	RegisterSwaggerRoute(engine, cfg.Server)
	RegisterStaticRoute(engine, cfg.Server.StaticDir)
}

// RegisterStaticRoute 未命中 API 路由的 GET/HEAD 请求从 dir 提供静态文件，其余返回 404 JSON.
// http.Dir 会清理路径，无法访问 dir 之外的文件.
func RegisterStaticRoute(engine *gin.Engine, dir string) {
	var static http.Handler
	if dir != "" {
		static = http.FileServer(http.Dir(dir))
	}

	engine.NoRoute(func(c *gin.Context) {
		if static != nil && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			static.ServeHTTP(c.Writer, c.Request)
			return
		}

		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not found."})
	})
}
