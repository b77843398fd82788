package model

import "strings"

// ChatRequest 对话请求
// Model 为空时使用配置的默认模型；SystemPrompt 可选
type ChatRequest struct {
	Message      string `json:"message"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// Normalize 填充默认模型并去除首尾空白
func (r *ChatRequest) Normalize(defaultModel string) {
	r.Model = strings.TrimSpace(r.Model)
	if r.Model == "" {
		r.Model = defaultModel
	}
	r.SystemPrompt = strings.TrimSpace(r.SystemPrompt)
}

// HasMessage 消息是否非空（纯空白视为空）
func (r *ChatRequest) HasMessage() bool {
	return strings.TrimSpace(r.Message) != ""
}
