package ai

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3/option"
)

// dropSSEComments openai-go 中间件
// OpenRouter 在生成较慢时发送 ": OPENROUTER PROCESSING" 保活注释，
// SDK 会把注释后的空行当作一个 data 为空的事件解码并报错，这里在解码前将其剔除
func dropSSEComments(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp == nil || resp.Body == nil {
		return resp, err
	}
	if strings.HasPrefix(strings.ToLower(resp.Header.Get("Content-Type")), "text/event-stream") {
		resp.Body = newCommentFilter(resp.Body)
	}
	return resp, nil
}

// commentFilter 逐行过滤 SSE 流：丢弃注释行，以及不会携带任何字段的空事件
type commentFilter struct {
	src     io.ReadCloser
	reader  *bufio.Reader
	buf     bytes.Buffer
	pending bool // 上次空行之后是否输出过字段行
	err     error
}

func newCommentFilter(src io.ReadCloser) *commentFilter {
	return &commentFilter{src: src, reader: bufio.NewReader(src)}
}

func (f *commentFilter) Read(p []byte) (int, error) {
	for f.buf.Len() == 0 && f.err == nil {
		line, err := f.reader.ReadBytes('\n')
		if len(line) > 0 {
			f.filter(line)
		}
		f.err = err
	}
	if f.buf.Len() > 0 {
		return f.buf.Read(p)
	}
	return 0, f.err
}

func (f *commentFilter) filter(line []byte) {
	trimmed := bytes.TrimRight(line, "\r\n")
	switch {
	case len(trimmed) == 0:
		if f.pending {
			f.buf.Write(line)
			f.pending = false
		}
	case trimmed[0] == ':':
	default:
		f.buf.Write(line)
		f.pending = true
	}
}

func (f *commentFilter) Close() error {
	return f.src.Close()
}
