package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"chatrelay/internal/ai"
	"chatrelay/internal/config"
	"chatrelay/internal/model"
)

// ErrValidation 请求校验失败（消息为空），属于客户端错误，不重试
var ErrValidation = errors.New("message is required")

// UsageStore 累计用量存储（可选）
type UsageStore interface {
	Record(ctx context.Context, modelID string, usage model.Usage) error
	Snapshot(ctx context.Context) (map[string]model.ModelUsage, error)
}

// ChatService 对话服务 - 业务逻辑层
// 职责: 校验请求、组装消息、以固定采样参数调用上游
// 服务端不保存对话内容，每个请求相互独立
type ChatService struct {
	upstream ai.Upstream
	cfg      *config.AIConfig
	usage    UsageStore
}

// NewChatService 创建对话服务，usage 可为 nil
func NewChatService(upstream ai.Upstream, cfg *config.AIConfig, usage UsageStore) *ChatService {
	return &ChatService{
		upstream: upstream,
		cfg:      cfg,
		usage:    usage,
	}
}

// Complete 阻塞对话
func (s *ChatService) Complete(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	aiReq, err := s.buildRequest(req)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("model", aiReq.Model).Logger()
	start := time.Now()

	result, err := s.upstream.Complete(ctx, aiReq)
	if err != nil {
		logger.Error().Err(err).Dur("latency", time.Since(start)).Msg("upstream completion failed")
		return nil, err
	}

	logger.Info().
		Str("model_used", result.Model).
		Int("prompt_tokens", result.Usage.PromptTokens).
		Int("completion_tokens", result.Usage.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("chat completed")

	s.recordUsage(ctx, logger, result.Model, result.Usage)

	return &model.ChatResponse{
		Success:  true,
		Model:    result.Model,
		Response: result.Content,
		Usage:    result.Usage,
	}, nil
}

// StreamComplete 打开上游流
// 返回的流由调用方逐片段转发并负责 Close；服务端不累积完整文本
func (s *ChatService) StreamComplete(ctx context.Context, req *model.ChatRequest) (ai.FragmentStream, error) {
	aiReq, err := s.buildRequest(req)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("model", aiReq.Model).Logger()

	stream, err := s.upstream.Stream(ctx, aiReq)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open upstream stream")
		return nil, err
	}

	logger.Debug().Msg("upstream stream opened")

	return &meteredStream{
		FragmentStream: stream,
		logger:         logger,
		start:          time.Now(),
		onClose: func() {
			s.recordUsage(context.Background(), logger, aiReq.Model, model.Usage{})
		},
	}, nil
}

// ListModels 返回静态模型表，不调用上游
func (s *ChatService) ListModels() map[string]string {
	return s.cfg.ModelTable()
}

// Usage 返回累计用量，未配置存储时 Enabled 为 false
func (s *ChatService) Usage(ctx context.Context) (*model.UsageResponse, error) {
	if s.usage == nil {
		return &model.UsageResponse{Enabled: false, Models: map[string]model.ModelUsage{}}, nil
	}
	snapshot, err := s.usage.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &model.UsageResponse{Enabled: true, Models: snapshot}, nil
}

// buildRequest 校验并组装上游请求：可选 system 消息在前，用户消息在后
func (s *ChatService) buildRequest(req *model.ChatRequest) (*ai.ChatRequest, error) {
	if req == nil || !req.HasMessage() {
		return nil, ErrValidation
	}

	req.Normalize(s.cfg.DefaultModel)

	messages := make([]ai.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Message})

	return &ai.ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: s.cfg.Options.Temperature,
		MaxTokens:   s.cfg.Options.MaxTokens,
		TopP:        s.cfg.Options.TopP,
	}, nil
}

func (s *ChatService) recordUsage(ctx context.Context, logger zerolog.Logger, modelID string, usage model.Usage) {
	if s.usage == nil {
		return
	}
	if err := s.usage.Record(ctx, modelID, usage); err != nil {
		logger.Warn().Err(err).Msg("failed to record usage")
	}
}

// meteredStream 统计片段数量与字节数，关闭时记录日志
type meteredStream struct {
	ai.FragmentStream
	logger    zerolog.Logger
	start     time.Time
	fragments int
	bytes     int
	closed    bool
	onClose   func()
}

func (m *meteredStream) Recv() (string, error) {
	content, err := m.FragmentStream.Recv()
	if err == nil {
		m.fragments++
		m.bytes += len(content)
	} else if !errors.Is(err, io.EOF) {
		m.logger.Error().Err(err).Int("fragments", m.fragments).Msg("upstream stream failed")
	}
	return content, err
}

func (m *meteredStream) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.FragmentStream.Close()
	m.logger.Info().
		Int("fragments", m.fragments).
		Int("bytes", m.bytes).
		Dur("latency", time.Since(m.start)).
		Msg("chat stream closed")
	if m.onClose != nil {
		m.onClose()
	}
	return err
}
