package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	AI     AIConfig     `mapstructure:"ai"`
	Log    LogConfig    `mapstructure:"log"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 0 表示不限制，流式响应需要
}

// AIConfig 上游 LLM 服务配置
type AIConfig struct {
	Provider     string          `mapstructure:"provider"` // openrouter, openai, azure, ark
	APIKey       string          `mapstructure:"api_key"`
	BaseURL      string          `mapstructure:"base_url"`
	DefaultModel string          `mapstructure:"default_model"`
	AppURL       string          `mapstructure:"app_url"`  // OpenRouter HTTP-Referer
	AppName      string          `mapstructure:"app_name"` // OpenRouter X-Title
	Options      AIOptionsConfig `mapstructure:"options"`
	Models       []ModelEntry    `mapstructure:"models"`
}

// AIOptionsConfig 固定采样参数，请求方不可覆盖
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ModelEntry 可选模型表中的一项
type ModelEntry struct {
	Name string `mapstructure:"name"` // 符号名，如 GPT_4O
	ID   string `mapstructure:"id"`   // 上游模型 ID，如 openai/gpt-4o
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// RedisConfig Redis 配置，Addr 为空时不启用用量统计
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DefaultModels 默认模型表
func DefaultModels() []ModelEntry {
	return []ModelEntry{
		{Name: "GPT_4O", ID: "openai/gpt-4o"},
		{Name: "CLAUDE_SONNET", ID: "anthropic/claude-3.5-sonnet"},
		{Name: "DEEPSEEK_R1", ID: "deepseek/deepseek-r1"},
		{Name: "GEMINI_PRO", ID: "google/gemini-pro-1.5"},
		{Name: "LLAMA_3", ID: "meta-llama/llama-3.1-70b-instruct"},
	}
}

// ModelTable 返回符号名到上游模型 ID 的映射
func (c *AIConfig) ModelTable() map[string]string {
	entries := c.Models
	if len(entries) == 0 {
		entries = DefaultModels()
	}
	table := make(map[string]string, len(entries))
	for _, m := range entries {
		if m.Name == "" || m.ID == "" {
			continue
		}
		table[m.Name] = m.ID
	}
	return table
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	validProviders := map[string]bool{"openrouter": true, "openai": true, "azure": true, "ark": true}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}

	if c.AI.APIKey == "" {
		return errors.New("AI API key is required (CHATRELAY_AI_API_KEY or OPENROUTER_API_KEY)")
	}

	if c.AI.DefaultModel == "" {
		return errors.New("ai.default_model must not be empty")
	}

	return nil
}
