package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chatrelay/internal/model"
	httpx "chatrelay/internal/pkg/http"
)

// API 中继服务的客户端接口，Session 通过它发起请求
type API interface {
	Complete(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error)
	Stream(ctx context.Context, req *model.ChatRequest) (*EventReader, error)
}

// StatusError 中继返回非 2xx 状态
type StatusError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s", msg, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// Client 中继服务 HTTP 客户端
type Client struct {
	baseURL string
	http    *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient 创建客户端，baseURL 形如 http://localhost:3000
// 不设置整体超时，流式响应可能持续很久，取消依赖 ctx
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete 调用 POST /api/chat
func (c *Client) Complete(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	resp, err := c.post(ctx, "/api/chat", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &out, nil
}

// Stream 调用 POST /api/chat/stream，状态码为 2xx 时返回帧读取器
// 调用方负责 Close
func (c *Client) Stream(ctx context.Context, req *model.ChatRequest) (*EventReader, error) {
	resp, err := c.post(ctx, "/api/chat/stream", req)
	if err != nil {
		return nil, err
	}
	return NewEventReader(resp.Body), nil
}

// Health 调用 GET /health，返回服务是否在线
func (c *Client) Health(ctx context.Context) bool {
	var out model.HealthResponse
	if err := c.getJSON(ctx, "/health", &out); err != nil {
		return false
	}
	return out.Status == "ok"
}

// Models 调用 GET /api/models
func (c *Client) Models(ctx context.Context) (map[string]string, error) {
	var out model.ModelsResponse
	if err := c.getJSON(ctx, "/api/models", &out); err != nil {
		return nil, err
	}
	return out.Models, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// do 发送请求，非 2xx 时读取错误体并关闭
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	statusErr := &StatusError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var errResp httpx.ErrorResponse
	if json.Unmarshal(raw, &errResp) == nil {
		statusErr.Message = errResp.Error
		statusErr.Details = errResp.Details
	}
	return nil, statusErr
}
