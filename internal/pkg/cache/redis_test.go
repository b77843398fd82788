package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"chatrelay/internal/config"
	"chatrelay/internal/model"
)

func TestParseModelUsage(t *testing.T) {
	Convey("parseModelUsage 解析 Redis hash", t, func() {
		Convey("完整字段", func() {
			got := parseModelUsage(map[string]string{
				"requests":          "3",
				"prompt_tokens":     "30",
				"completion_tokens": "45",
				"total_tokens":      "75",
				"cost":              "0.0125",
			})
			So(got, ShouldResemble, model.ModelUsage{
				Requests:         3,
				PromptTokens:     30,
				CompletionTokens: 45,
				TotalTokens:      75,
				Cost:             0.0125,
			})
		})

		Convey("缺失字段为零值", func() {
			got := parseModelUsage(map[string]string{"requests": "1"})
			So(got.Requests, ShouldEqual, 1)
			So(got.TotalTokens, ShouldEqual, 0)
			So(got.Cost, ShouldEqual, 0)
		})
	})
}

func TestUsageModelKey(t *testing.T) {
	Convey("UsageModelKey 拼接前缀", t, func() {
		So(UsageModelKey("openai/gpt-4o"), ShouldEqual, "usage:model:openai/gpt-4o")
	})
}

func TestNewUsageStore_Unreachable(t *testing.T) {
	Convey("Redis 不可达时返回错误", t, func() {
		_, err := NewUsageStore(&config.RedisConfig{Addr: "127.0.0.1:1"})
		So(err, ShouldNotBeNil)
	})
}

func TestUsageStore_RecordSnapshot(t *testing.T) {
	Convey("UsageStore 累加并读取用量", t, func() {
		mr := miniredis.RunT(t)
		store := NewUsageStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		defer store.Close()
		ctx := context.Background()

		cost := 0.0025
		So(store.Record(ctx, "openai/gpt-4o", model.Usage{
			PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, Cost: &cost,
		}), ShouldBeNil)
		So(store.Record(ctx, "openai/gpt-4o", model.Usage{
			PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12,
		}), ShouldBeNil)
		So(store.Record(ctx, "anthropic/claude-3-haiku", model.Usage{
			PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3,
		}), ShouldBeNil)

		got, err := store.Snapshot(ctx)
		So(err, ShouldBeNil)
		So(got, ShouldHaveLength, 2)

		gpt := got["openai/gpt-4o"]
		So(gpt.Requests, ShouldEqual, 2)
		So(gpt.PromptTokens, ShouldEqual, 15)
		So(gpt.CompletionTokens, ShouldEqual, 27)
		So(gpt.TotalTokens, ShouldEqual, 42)
		So(gpt.Cost, ShouldAlmostEqual, 0.0025, 1e-9)

		haiku := got["anthropic/claude-3-haiku"]
		So(haiku.Requests, ShouldEqual, 1)
		So(haiku.TotalTokens, ShouldEqual, 3)
		So(haiku.Cost, ShouldEqual, 0)

		So(mr.HGet(UsageModelKey("anthropic/claude-3-haiku"), "cost"), ShouldEqual, "")
	})

	Convey("空库返回空快照", t, func() {
		mr := miniredis.RunT(t)
		store, err := NewUsageStore(&config.RedisConfig{Addr: mr.Addr()})
		So(err, ShouldBeNil)
		defer store.Close()

		got, err := store.Snapshot(context.Background())
		So(err, ShouldBeNil)
		So(got, ShouldBeEmpty)
	})
}
