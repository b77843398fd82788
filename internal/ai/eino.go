package ai

import (
	"context"
	"errors"
	"io"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"chatrelay/internal/model"
)

// EinoUpstream 基于 Eino ChatModel 的上游实现（openai / azure / ark）
type EinoUpstream struct {
	chatModel einomodel.BaseChatModel
}

// NewEinoUpstream 创建 Eino 上游
func NewEinoUpstream(chatModel einomodel.BaseChatModel) *EinoUpstream {
	return &EinoUpstream{chatModel: chatModel}
}

// Complete 阻塞调用
func (u *EinoUpstream) Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	resp, err := u.chatModel.Generate(ctx, toSchemaMessages(req.Messages), einoOptions(req)...)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	if resp == nil {
		return nil, &UpstreamError{Err: errors.New("empty response from chat model")}
	}

	result := &ChatResult{
		Model:   req.Model,
		Content: resp.Content,
	}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		usage := resp.ResponseMeta.Usage
		result.Usage = model.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}
	return result, nil
}

// Stream 流式调用
func (u *EinoUpstream) Stream(ctx context.Context, req *ChatRequest) (FragmentStream, error) {
	sr, err := u.chatModel.Stream(ctx, toSchemaMessages(req.Messages), einoOptions(req)...)
	if err != nil {
		return nil, wrapUpstream(err)
	}
	return &einoStream{reader: sr}, nil
}

// einoStream 适配 schema.StreamReader
type einoStream struct {
	reader *schema.StreamReader[*schema.Message]
}

func (s *einoStream) Recv() (string, error) {
	for {
		msg, err := s.reader.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", wrapUpstream(err)
		}
		// 跳过仅含角色或元数据的空片段
		if msg == nil || msg.Content == "" {
			continue
		}
		return msg.Content, nil
	}
}

func (s *einoStream) Close() error {
	s.reader.Close()
	return nil
}

func toSchemaMessages(msgs []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}

func einoOptions(req *ChatRequest) []einomodel.Option {
	opts := []einomodel.Option{einomodel.WithModel(req.Model)}
	if req.Temperature > 0 {
		opts = append(opts, einomodel.WithTemperature(float32(req.Temperature)))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(req.MaxTokens))
	}
	if req.TopP > 0 {
		opts = append(opts, einomodel.WithTopP(float32(req.TopP)))
	}
	return opts
}
