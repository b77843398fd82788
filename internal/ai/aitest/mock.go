// Package aitest 提供上游 LLM 的测试替身
package aitest

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"chatrelay/internal/ai"
)

// MockUpstream testify mock 实现的 ai.Upstream
type MockUpstream struct {
	mock.Mock
}

// Complete 实现 ai.Upstream
func (m *MockUpstream) Complete(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*ai.ChatResult)
	return res, args.Error(1)
}

// Stream 实现 ai.Upstream
func (m *MockUpstream) Stream(ctx context.Context, req *ai.ChatRequest) (ai.FragmentStream, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(ai.FragmentStream)
	return s, args.Error(1)
}

// SliceStream 依次返回预设片段的 FragmentStream
// Err 非空时在所有片段之后返回该错误，否则返回 io.EOF
type SliceStream struct {
	Fragments []string
	Err       error

	mu     sync.Mutex
	pos    int
	closed bool
}

// NewSliceStream 创建 SliceStream
func NewSliceStream(fragments []string, err error) *SliceStream {
	return &SliceStream{Fragments: fragments, Err: err}
}

// Recv 实现 ai.FragmentStream
func (s *SliceStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos < len(s.Fragments) {
		f := s.Fragments[s.pos]
		s.pos++
		return f, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Close 实现 ai.FragmentStream
func (s *SliceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed 流是否已关闭
func (s *SliceStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// BlockingStream 在 ctx 取消前阻塞的 FragmentStream，用于模拟客户端断开
type BlockingStream struct {
	Ctx context.Context

	mu     sync.Mutex
	first  string
	sent   bool
	closed bool
}

// NewBlockingStream 先返回 first，之后阻塞直到 ctx 取消
func NewBlockingStream(ctx context.Context, first string) *BlockingStream {
	return &BlockingStream{Ctx: ctx, first: first}
}

// Recv 实现 ai.FragmentStream
func (s *BlockingStream) Recv() (string, error) {
	s.mu.Lock()
	if !s.sent {
		s.sent = true
		s.mu.Unlock()
		return s.first, nil
	}
	s.mu.Unlock()
	<-s.Ctx.Done()
	return "", &ai.UpstreamError{Err: s.Ctx.Err()}
}

// Close 实现 ai.FragmentStream
func (s *BlockingStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed 流是否已关闭
func (s *BlockingStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
