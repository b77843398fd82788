package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/config"
	"chatrelay/internal/pkg/ctxutil"
)

// fakeOpenRouter 模拟 OpenAI 兼容的 chat completions 接口
type fakeOpenRouter struct {
	status int
	chunks []string
	// keepAlive 在每个片段前与结束前插入 OpenRouter 保活注释
	keepAlive bool
	calls     int
	gotBody   map[string]any
	gotHdr    http.Header
}

func (f *fakeOpenRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls++
	f.gotHdr = r.Header.Clone()
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &f.gotBody)

	if f.status != 0 && f.status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"auth_error"}}`)
		return
	}

	if stream, _ := f.gotBody["stream"].(bool); stream {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, c := range f.chunks {
			if f.keepAlive {
				fmt.Fprint(w, ": OPENROUTER PROCESSING\n\n")
			}
			chunk, _ := json.Marshal(map[string]any{
				"id":      "gen-1",
				"object":  "chat.completion.chunk",
				"created": 1,
				"model":   "openai/gpt-4o",
				"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": c}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
			w.(http.Flusher).Flush()
		}
		if f.keepAlive {
			fmt.Fprint(w, ": OPENROUTER PROCESSING\r\n\r\n")
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{
		"id": "gen-1",
		"object": "chat.completion",
		"created": 1,
		"model": "openai/gpt-4o-2024-08-06",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12, "cost": 0.00042}
	}`)
}

func newTestOpenRouter(fake *fakeOpenRouter) (*OpenRouterUpstream, func()) {
	srv := httptest.NewServer(fake)
	up := NewOpenRouterUpstream(&config.AIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		AppURL:  "http://localhost:3000",
		AppName: "chatrelay",
	})
	return up, srv.Close
}

func TestOpenRouterUpstream_Complete(t *testing.T) {
	Convey("OpenRouterUpstream.Complete", t, func() {
		ctx := context.Background()
		req := &ChatRequest{
			Model:       "openai/gpt-4o",
			Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
			Temperature: 0.7,
			MaxTokens:   2000,
		}

		Convey("返回内容、上游模型与含 cost 的用量", func() {
			fake := &fakeOpenRouter{}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			res, err := up.Complete(ctx, req)
			So(err, ShouldBeNil)
			So(res.Content, ShouldEqual, "Hello there")
			So(res.Model, ShouldEqual, "openai/gpt-4o-2024-08-06")
			So(res.Usage.PromptTokens, ShouldEqual, 5)
			So(res.Usage.CompletionTokens, ShouldEqual, 7)
			So(res.Usage.TotalTokens, ShouldEqual, res.Usage.PromptTokens+res.Usage.CompletionTokens)
			So(res.Usage.Cost, ShouldNotBeNil)
			So(*res.Usage.Cost, ShouldAlmostEqual, 0.00042, 1e-9)

			So(fake.gotBody["model"], ShouldEqual, "openai/gpt-4o")
			So(fake.gotBody["temperature"], ShouldAlmostEqual, 0.7, 1e-9)
			So(fake.gotBody["max_tokens"], ShouldEqual, float64(2000))
			msgs := fake.gotBody["messages"].([]any)
			So(msgs, ShouldHaveLength, 2)
			So(msgs[0].(map[string]any)["role"], ShouldEqual, "system")
			So(fake.gotHdr.Get("Authorization"), ShouldEqual, "Bearer sk-test")
			So(fake.gotHdr.Get("X-Title"), ShouldEqual, "chatrelay")
		})

		Convey("透传入站请求 ID", func() {
			fake := &fakeOpenRouter{}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			_, err := up.Complete(ctxutil.WithRequestID(ctx, "req-123"), req)
			So(err, ShouldBeNil)
			So(fake.gotHdr.Get("X-Request-ID"), ShouldEqual, "req-123")
		})

		Convey("非 2xx 返回带状态码的 UpstreamError 且不重试", func() {
			fake := &fakeOpenRouter{status: http.StatusInternalServerError}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			_, err := up.Complete(ctx, req)
			So(err, ShouldNotBeNil)
			var upErr *UpstreamError
			So(errors.As(err, &upErr), ShouldBeTrue)
			So(upErr.StatusCode, ShouldEqual, http.StatusInternalServerError)
			So(fake.calls, ShouldEqual, 1)
		})
	})
}

func TestOpenRouterUpstream_Stream(t *testing.T) {
	Convey("OpenRouterUpstream.Stream", t, func() {
		ctx := context.Background()
		req := &ChatRequest{Model: "openai/gpt-4o", Messages: []Message{{Role: RoleUser, Content: "hi"}}}

		Convey("按到达顺序转发片段", func() {
			fake := &fakeOpenRouter{chunks: []string{"", "Hel", "lo", " wor", "ld"}}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			s, err := up.Stream(ctx, req)
			So(err, ShouldBeNil)
			defer s.Close()

			got, err := drain(s)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"Hel", "lo", " wor", "ld"})
			So(fake.gotBody["stream"], ShouldEqual, true)
		})

		Convey("忽略保活注释且不截断回复", func() {
			fake := &fakeOpenRouter{chunks: []string{"Hel", "lo"}, keepAlive: true}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			s, err := up.Stream(ctx, req)
			So(err, ShouldBeNil)
			defer s.Close()

			got, err := drain(s)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"Hel", "lo"})
		})

		Convey("鉴权失败在流开始前暴露", func() {
			fake := &fakeOpenRouter{status: http.StatusUnauthorized}
			up, closeFn := newTestOpenRouter(fake)
			defer closeFn()

			_, err := up.Stream(ctx, req)
			var upErr *UpstreamError
			So(errors.As(err, &upErr), ShouldBeTrue)
			So(upErr.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestExtractCost(t *testing.T) {
	Convey("extractCost 读取扩展字段", t, func() {
		So(extractCost(""), ShouldBeNil)
		So(extractCost(`{"prompt_tokens":1}`), ShouldBeNil)
		So(extractCost(`not json`), ShouldBeNil)
		cost := extractCost(`{"prompt_tokens":1,"cost":0.5}`)
		So(cost, ShouldNotBeNil)
		So(*cost, ShouldEqual, 0.5)
	})
}
