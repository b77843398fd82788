package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chatrelay/internal/config"
	"chatrelay/internal/model"
	"chatrelay/internal/pkg/ctxutil"
)

// DefaultOpenRouterBaseURL OpenRouter OpenAI 兼容接口地址
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterUpstream 基于 openai-go SDK 的上游实现
// 适用于任何 OpenAI 兼容的 chat completions 接口
type OpenRouterUpstream struct {
	client openai.Client
}

// NewOpenRouterUpstream 创建 OpenRouter 上游
func NewOpenRouterUpstream(cfg *config.AIConfig) *OpenRouterUpstream {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithMiddleware(dropSSEComments),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.AppURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.AppURL))
	}
	if cfg.AppName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppName))
	}

	return &OpenRouterUpstream{client: openai.NewClient(opts...)}
}

// Complete 阻塞调用
func (u *OpenRouterUpstream) Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	completion, err := u.client.Chat.Completions.New(ctx, buildParams(req), requestOptions(ctx)...)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	if len(completion.Choices) == 0 {
		return nil, &UpstreamError{Err: errors.New("upstream returned no choices")}
	}

	modelUsed := completion.Model
	if modelUsed == "" {
		modelUsed = req.Model
	}

	return &ChatResult{
		Model:   modelUsed,
		Content: completion.Choices[0].Message.Content,
		Usage: model.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
			Cost:             extractCost(completion.Usage.RawJSON()),
		},
	}, nil
}

// Stream 流式调用
// 先读取第一个片段，使连接与鉴权错误在响应头写出前暴露
func (u *OpenRouterUpstream) Stream(ctx context.Context, req *ChatRequest) (FragmentStream, error) {
	stream := u.client.Chat.Completions.NewStreaming(ctx, buildParams(req), requestOptions(ctx)...)
	return primeStream(stream)
}

// chunkStream ssestream.Stream 的最小接口
type chunkStream interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

type sdkStream struct {
	stream  chunkStream
	first   openai.ChatCompletionChunk
	primed  bool
	drained bool
}

func primeStream(stream chunkStream) (FragmentStream, error) {
	s := &sdkStream{stream: stream}
	if stream.Next() {
		s.first = stream.Current()
		s.primed = true
		return s, nil
	}
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, wrapUpstream(err)
	}
	s.drained = true
	return s, nil
}

func (s *sdkStream) Recv() (string, error) {
	for {
		var chunk openai.ChatCompletionChunk
		switch {
		case s.primed:
			chunk = s.first
			s.primed = false
		case s.drained:
			return "", io.EOF
		case s.stream.Next():
			chunk = s.stream.Current()
		default:
			s.drained = true
			if err := s.stream.Err(); err != nil {
				return "", wrapUpstream(err)
			}
			return "", io.EOF
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *sdkStream) Close() error {
	return s.stream.Close()
}

func buildParams(req *ChatRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	return params
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out[i] = openai.SystemMessage(m.Content)
		case RoleAssistant:
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}

// extractCost 从原始 usage JSON 中读取 OpenRouter 扩展字段 cost
func extractCost(raw string) *float64 {
	if raw == "" {
		return nil
	}
	var extra struct {
		Cost *float64 `json:"cost"`
	}
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil
	}
	return extra.Cost
}

// requestOptions 将入站请求 ID 透传给上游，便于排查
func requestOptions(ctx context.Context) []option.RequestOption {
	if id, ok := ctxutil.GetRequestID(ctx); ok {
		return []option.RequestOption{option.WithHeader("X-Request-ID", id)}
	}
	return nil
}
