package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"chatrelay/internal/config"
	"chatrelay/internal/model"
)

// 用量统计 key 模式
const (
	UsageModelsKey      = "usage:models"
	UsageModelKeyPrefix = "usage:model:"
)

// UsageModelKey 生成单模型用量 key
func UsageModelKey(modelID string) string {
	return UsageModelKeyPrefix + modelID
}

// UsageStore 基于 Redis 的累计用量统计
// 只记录 token 计数与费用，不保存对话内容
type UsageStore struct {
	client *redis.Client
}

// NewUsageStore 创建 Redis 用量统计客户端
func NewUsageStore(cfg *config.RedisConfig) (*UsageStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewUsageStoreWithClient(client), nil
}

// NewUsageStoreWithClient 使用已有客户端创建
func NewUsageStoreWithClient(client *redis.Client) *UsageStore {
	return &UsageStore{client: client}
}

// Record 累加一次请求的用量
func (s *UsageStore) Record(ctx context.Context, modelID string, usage model.Usage) error {
	key := UsageModelKey(modelID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, UsageModelsKey, modelID)
		pipe.HIncrBy(ctx, key, "requests", 1)
		pipe.HIncrBy(ctx, key, "prompt_tokens", int64(usage.PromptTokens))
		pipe.HIncrBy(ctx, key, "completion_tokens", int64(usage.CompletionTokens))
		pipe.HIncrBy(ctx, key, "total_tokens", int64(usage.TotalTokens))
		if usage.Cost != nil {
			pipe.HIncrByFloat(ctx, key, "cost", *usage.Cost)
		}
		return nil
	})
	return err
}

// Snapshot 读取所有模型的累计用量
func (s *UsageStore) Snapshot(ctx context.Context) (map[string]model.ModelUsage, error) {
	ids, err := s.client.SMembers(ctx, UsageModelsKey).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.ModelUsage, len(ids))
	for _, id := range ids {
		fields, err := s.client.HGetAll(ctx, UsageModelKey(id)).Result()
		if err != nil {
			return nil, err
		}
		out[id] = parseModelUsage(fields)
	}
	return out, nil
}

// Close 关闭连接
func (s *UsageStore) Close() error {
	return s.client.Close()
}

func parseModelUsage(fields map[string]string) model.ModelUsage {
	atoi := func(k string) int64 {
		v, _ := strconv.ParseInt(fields[k], 10, 64)
		return v
	}
	cost, _ := strconv.ParseFloat(fields["cost"], 64)

	return model.ModelUsage{
		Requests:         atoi("requests"),
		PromptTokens:     atoi("prompt_tokens"),
		CompletionTokens: atoi("completion_tokens"),
		TotalTokens:      atoi("total_tokens"),
		Cost:             cost,
	}
}
