package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/ai/component"
	"chatrelay/internal/config"
	"chatrelay/internal/model"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 发往上游的单条消息
type Message struct {
	Role    string
	Content string
}

// ChatRequest 上游对话请求
// 采样参数由配置固定，调用方不可覆盖
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// ChatResult 上游阻塞调用结果
type ChatResult struct {
	Model   string
	Content string
	Usage   model.Usage
}

// FragmentStream 上游增量片段流
// Recv 在流结束时返回 io.EOF；Close 必须在所有退出路径上调用
type FragmentStream interface {
	Recv() (string, error)
	Close() error
}

// Upstream 上游 LLM 服务
type Upstream interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error)
	Stream(ctx context.Context, req *ChatRequest) (FragmentStream, error)
}

// NewUpstream 根据 provider 创建上游客户端
// openrouter 使用 openai-go SDK（可读取 usage.cost），其余走 Eino ChatModel
func NewUpstream(ctx context.Context, cfg *config.AIConfig) (Upstream, error) {
	if cfg.APIKey == "" {
		log.Warn().Str("provider", cfg.Provider).Msg("AI API key not configured, upstream calls will fail")
	}

	switch cfg.Provider {
	case "openrouter", "":
		return NewOpenRouterUpstream(cfg), nil
	default:
		chatModel, err := component.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewEinoUpstream(chatModel), nil
	}
}
