package chatclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/model"
)

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ClearPrompt 清空对话的确认提示
const ClearPrompt = "Are you sure you want to clear the chat?"

// Message 对话记录中的一条消息
type Message struct {
	Role    string
	Content string
}

// Session 单个对话会话
// 同一时刻只允许一个请求在途，在途期间的发送直接丢弃
type Session struct {
	api     API
	view    View
	confirm Confirmer

	mu         sync.Mutex
	history    []Message
	processing bool
}

// NewSession 创建会话
func NewSession(api API, view View, confirm Confirmer) *Session {
	return &Session{
		api:     api,
		view:    view,
		confirm: confirm,
	}
}

// SendMessage 发送一条消息并渲染回复
// 文本为空或已有请求在途时不做任何事并返回 false
func (s *Session) SendMessage(ctx context.Context, text, modelID string, streaming bool) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return false
	}
	s.processing = true
	s.history = append(s.history, Message{Role: RoleUser, Content: text})
	s.mu.Unlock()

	defer s.release()

	s.view.AddMessage(RoleUser, text)

	req := &model.ChatRequest{Message: text, Model: modelID}
	var err error
	if streaming {
		err = s.stream(ctx, req)
	} else {
		err = s.complete(ctx, req)
	}
	if err != nil {
		log.Debug().Err(err).Bool("streaming", streaming).Msg("chat request failed")
		s.view.ShowError(err)
	}
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()
}

func (s *Session) complete(ctx context.Context, req *model.ChatRequest) error {
	s.view.ShowPending()
	resp, err := s.api.Complete(ctx, req)
	s.view.HidePending()
	if err != nil {
		return err
	}

	s.view.AddMessage(RoleAssistant, resp.Response)
	s.appendAssistant(resp.Response)
	s.view.ShowUsage(FormatUsage(resp.Usage))
	return nil
}

func (s *Session) stream(ctx context.Context, req *model.ChatRequest) error {
	s.view.ShowPending()
	events, err := s.api.Stream(ctx, req)
	if err != nil {
		s.view.HidePending()
		return err
	}
	defer events.Close()

	// 占位在收到第一个片段后才替换为助手气泡
	var bubble Bubble
	openBubble := func() {
		if bubble == nil {
			s.view.HidePending()
			bubble = s.view.OpenBubble()
		}
	}
	defer func() {
		if bubble != nil {
			bubble.Finish()
		} else {
			s.view.HidePending()
		}
	}()

	var full strings.Builder
	for {
		content, err := events.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		openBubble()
		full.WriteString(content)
		bubble.Update(full.String())
	}

	openBubble()
	s.appendAssistant(full.String())
	return nil
}

func (s *Session) appendAssistant(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Message{Role: RoleAssistant, Content: content})
}

// ClearChat 确认后清空对话记录与用量显示
// 返回是否已清空；有请求在途时不清空
func (s *Session) ClearChat() bool {
	if !s.confirm.Confirm(ClearPrompt) {
		return false
	}

	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return false
	}
	s.history = nil
	s.mu.Unlock()

	s.view.Reset()
	return true
}

// History 返回对话记录副本
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

// Processing 是否有请求在途
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}
