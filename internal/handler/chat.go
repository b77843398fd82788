package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chatrelay/internal/model"
	httpx "chatrelay/internal/pkg/http"
	"chatrelay/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	svc *service.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat 对话接口
// @Summary      阻塞对话
// @Description  转发一次对话请求到上游，返回完整回复与 token 用量
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChatRequest   true  "对话请求"
// @Success      200      {object}  model.ChatResponse
// @Failure      400      {object}  httpx.ErrorResponse  "消息为空"
// @Failure      500      {object}  httpx.ErrorResponse  "上游调用失败"
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpx.NewErrorResponse("Invalid request body", err.Error()))
		return
	}

	resp, err := h.svc.Complete(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChatStream 流式对话接口 (SSE)
// @Summary      流式对话
// @Description  以 text/event-stream 逐片段转发上游输出，每帧为 data: {"content": "..."}，以 data: [DONE] 结束
// @Description  流开始后上游出错时写出 data: {"error": "..."} 并关闭连接，不发送 [DONE]
// @Tags         对话
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      model.ChatRequest   true  "对话请求"
// @Success      200      {string}  string               "SSE 帧序列"
// @Failure      400      {object}  httpx.ErrorResponse  "消息为空"
// @Failure      500      {object}  httpx.ErrorResponse  "上游连接失败"
// @Router       /api/chat/stream [post]
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpx.NewErrorResponse("Invalid request body", err.Error()))
		return
	}

	ctx := c.Request.Context()
	logger := zerolog.Ctx(ctx)

	// 响应头写出前的失败仍可返回 JSON 错误
	stream, err := h.svc.StreamComplete(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	defer stream.Close()

	// 设置 SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for {
		content, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if err := writeFrame(c.Writer, []byte(model.StreamSentinel)); err != nil {
				logger.Debug().Err(err).Msg("failed to write stream sentinel")
			}
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug().Msg("client disconnected, upstream stream abandoned")
				return
			}
			// 状态码已发送，只能通过错误帧告知客户端
			if werr := writeJSONFrame(c.Writer, model.StreamError{Error: err.Error()}); werr != nil {
				logger.Debug().Err(werr).Msg("failed to write error frame")
			}
			return
		}

		if err := writeJSONFrame(c.Writer, model.StreamFragment{Content: content}); err != nil {
			logger.Debug().Err(err).Msg("client write failed, upstream stream abandoned")
			return
		}
	}
}

// Models 可选模型列表
// @Summary      模型列表
// @Description  返回符号名到上游模型 ID 的静态映射
// @Tags         对话
// @Produce      json
// @Success      200  {object}  model.ModelsResponse
// @Router       /api/models [get]
func (h *ChatHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, model.ModelsResponse{Models: h.svc.ListModels()})
}

// Usage 累计用量
// @Summary      用量统计
// @Description  按模型汇总的请求数、token 数与费用；未配置 Redis 时 enabled 为 false
// @Tags         对话
// @Produce      json
// @Success      200  {object}  model.UsageResponse
// @Failure      500  {object}  httpx.ErrorResponse
// @Router       /api/usage [get]
func (h *ChatHandler) Usage(c *gin.Context) {
	resp, err := h.svc.Usage(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, httpx.NewErrorResponse("Failed to load usage", err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError 按错误类型映射 HTTP 状态码
func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusBadRequest, httpx.NewErrorResponse("Message is required"))
		return
	}
	c.JSON(http.StatusInternalServerError, httpx.NewErrorResponse("Failed to process chat request", err.Error()))
}

type flushWriter interface {
	io.Writer
	http.Flusher
}

// writeJSONFrame 写出一帧 data: <json>，不转义 HTML 字符
func writeJSONFrame(w flushWriter, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return writeFrame(w, bytes.TrimRight(buf.Bytes(), "\n"))
}

func writeFrame(w flushWriter, payload []byte) error {
	frame := make([]byte, 0, len(model.SSEDataPrefix)+len(payload)+2)
	frame = append(frame, model.SSEDataPrefix...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	if _, err := w.Write(frame); err != nil {
		return err
	}
	w.Flush()
	return nil
}
