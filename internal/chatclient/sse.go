package chatclient

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/model"
)

// StreamError 中继在流中途写出的错误帧
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "stream failed: " + e.Message
}

// IsStreamError 判断是否为流中途错误
func IsStreamError(err error) bool {
	var se *StreamError
	return errors.As(err, &se)
}

// EventReader 按行解析 data: 帧
// 帧可能跨多次网络读取，Scanner 负责按行重组
type EventReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

// NewEventReader 包装响应体
func NewEventReader(body io.ReadCloser) *EventReader {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	return &EventReader{body: body, scanner: scanner}
}

type frame struct {
	Content string  `json:"content"`
	Error   *string `json:"error"`
}

// Next 返回下一个非空片段
// [DONE] 或响应体结束时返回 io.EOF；错误帧返回 *StreamError
// 无法解析的帧被跳过
func (r *EventReader) Next() (string, error) {
	if r.done {
		return "", io.EOF
	}

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !strings.HasPrefix(line, model.SSEDataPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, model.SSEDataPrefix)
		if data == model.StreamSentinel {
			r.done = true
			return "", io.EOF
		}

		var f frame
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			log.Debug().Err(err).Str("frame", data).Msg("skipping malformed stream frame")
			continue
		}
		if f.Error != nil {
			r.done = true
			return "", &StreamError{Message: *f.Error}
		}
		if f.Content == "" {
			continue
		}
		return f.Content, nil
	}

	r.done = true
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close 关闭响应体
func (r *EventReader) Close() error {
	r.done = true
	return r.body.Close()
}
