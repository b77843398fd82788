package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/model"
)

// ISO8601Millis 与浏览器 Date.toISOString 一致的时间格式
const ISO8601Millis = "2006-01-02T15:04:05.000Z07:00"

// HealthHandler 健康检查处理器
type HealthHandler struct {
	now func() time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{now: time.Now}
}

// Health 健康检查
// @Summary      健康检查
// @Tags         系统
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(ISO8601Millis),
	})
}

// Ready 就绪检查
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
