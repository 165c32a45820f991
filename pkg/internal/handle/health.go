package handle

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/internal/types"
)

// Health 检查存储目录是否可用；事件总线只报告状态，不影响结果.
func Health(c *gin.Context) {
	store := ctxPkg.GetStore(c.Request.Context())
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{Status: "unhealthy", Error: "storage not initialized"})
		return
	}

	events := "disabled"
	if mqc := ctxPkg.GetMQClient(c.Request.Context()); mqc != nil {
		events = string(mqc.Type())
	}

	resp := types.HealthResponse{
		Status:  "ok",
		Storage: filepath.Base(store.Root()),
		Events:  events,
	}

	if err := store.Ping(); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)

		return
	}

	c.JSON(http.StatusOK, resp)
}
