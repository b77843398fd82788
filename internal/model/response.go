package model

// ChatResponse 对话响应
type ChatResponse struct {
	Success  bool   `json:"success"`
	Model    string `json:"model"`
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

// Usage Token 使用统计
// Cost 由 OpenRouter 返回，上游未提供时为 nil
type Usage struct {
	PromptTokens     int      `json:"promptTokens"`
	CompletionTokens int      `json:"completionTokens"`
	TotalTokens      int      `json:"totalTokens"`
	Cost             *float64 `json:"cost,omitempty"`
}

// StreamFragment 流式对话片段
type StreamFragment struct {
	Content string `json:"content"`
}

// StreamError 流已开始后上游出错时写出的错误帧
type StreamError struct {
	Error string `json:"error"`
}

// ModelsResponse 可选模型列表
type ModelsResponse struct {
	Models map[string]string `json:"models"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ModelUsage 单个模型的累计用量
type ModelUsage struct {
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	Cost             float64 `json:"cost"`
}

// UsageResponse 用量统计响应
type UsageResponse struct {
	Enabled bool                  `json:"enabled"`
	Models  map[string]ModelUsage `json:"models"`
}

// SSE 帧格式
const (
	SSEDataPrefix  = "data: "
	StreamSentinel = "[DONE]"
)
