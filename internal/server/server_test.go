package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"chatrelay/internal/ai"
	"chatrelay/internal/ai/aitest"
	"chatrelay/internal/config"
	"chatrelay/internal/model"
	"chatrelay/internal/server/middleware"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 3000, Mode: "test"},
		AI: config.AIConfig{
			Provider:     "openrouter",
			APIKey:       "sk-test",
			DefaultModel: "openai/gpt-4o",
			Options:      config.AIOptionsConfig{Temperature: 0.7, MaxTokens: 2000},
		},
	}
}

func TestServerRoutes(t *testing.T) {
	Convey("服务器路由", t, func() {
		up := new(aitest.MockUpstream)
		srv := NewWithUpstream(testConfig(), up, nil)
		engine := srv.Engine()

		Convey("/health 带有 request id", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(middleware.RequestIDHeader), ShouldNotBeEmpty)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("/ready", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("/api/chat 使用默认模型", func() {
			up.On("Complete", mock.Anything, mock.MatchedBy(func(r *ai.ChatRequest) bool {
				return r.Model == "openai/gpt-4o" && r.Temperature == 0.7 && r.MaxTokens == 2000
			})).Return(&ai.ChatResult{Model: "openai/gpt-4o", Content: "ok"}, nil).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"response":"ok"`)
			up.AssertExpectations(t)
		})

		Convey("/api/chat/stream 走完整中间件链", func() {
			up.On("Stream", mock.Anything, mock.Anything).
				Return(aitest.NewSliceStream([]string{"a", "b"}, nil), nil).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(`{"message":"hi"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual,
				`data: {"content":"a"}`+"\n\n"+`data: {"content":"b"}`+"\n\n"+model.SSEDataPrefix+model.StreamSentinel+"\n\n")
		})

		Convey("CORS 预检", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))
			So(w.Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("swagger 文档", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/chat/stream")
		})
	})
}
