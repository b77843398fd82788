package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	httpx "chatrelay/internal/pkg/http"
)

// Recovery 异常恢复中间件
// 流式响应已写出响应头时只记录日志，不再改写状态码
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("error", err).
					Str("path", c.Request.URL.Path).
					Str("method", c.Request.Method).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, httpx.NewErrorResponse("Internal Server Error"))
			}
		}()
		c.Next()
	}
}
