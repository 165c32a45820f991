// Package handle 提供 HTTP 请求处理器的实现.
// 处理器从请求 context 中取得存储资源（见 middleware.StorageMiddleware），业务逻辑在 service 包中.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/flarecloud/pkg/context"
	"github.com/yeisme/flarecloud/pkg/internal/filestore"
	"github.com/yeisme/flarecloud/pkg/internal/types"
	"github.com/yeisme/flarecloud/pkg/log"
)

// requestLogger 返回带 trace_id/span_id 的 handle 组件 logger.
func requestLogger(c *gin.Context) zerolog.Logger {
	return ctxPkg.WithTraceContext(c.Request.Context(), log.Component("handle"))
}

// abortWithError 将业务错误映射为状态码与 {"error": msg} 响应.
// 非法文件名 400，不存在 404，超出上传限制 413，其余使用 fallback 文案返回 500.
func abortWithError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, filestore.ErrInvalidName):
		c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: types.MsgInvalidName})
	case errors.Is(err, filestore.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, types.ErrorResponse{Error: types.MsgFileNotFound})
	case errors.As(err, &tooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: types.MsgTooLarge})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{Error: fallback})
	}
}
