package ai

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// UpstreamError 上游调用失败（网络错误、非 2xx、响应格式错误）
// 不自动重试
type UpstreamError struct {
	StatusCode int // 上游 HTTP 状态码，未知时为 0
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// wrapUpstream 将 SDK 错误包装为 UpstreamError，并尽量提取状态码
func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return err
	}
	ue := &UpstreamError{Err: err}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		ue.StatusCode = apiErr.StatusCode
	}
	return ue
}

// IsUpstreamError 是否为上游错误
func IsUpstreamError(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}
