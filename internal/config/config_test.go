package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-1")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfig_BurstOverridesCapacity(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "3")
	t.Setenv("RATE_LIMIT_BURST", "20")
	assert.Equal(t, 20, LoadRateLimitConfig().Capacity)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	t.Setenv("CACHE_TTL", "nonsense")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "cache", cfg.Prefix)
}

func TestLoadAIConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	assert.False(t, LoadAIConfig().Enabled())

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CHAT_TIMEOUT", "5s")
	t.Setenv("AI_MAX_TOKENS", "250")
	cfg := LoadAIConfig()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 250, cfg.MaxTokens)
	assert.Equal(t, "https://api.anthropic.com/v1", cfg.BaseURL)
}

func TestRabbitURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	assert.Equal(t, "amqp://u:p@broker:5672/", RabbitURL())

	t.Setenv("RABBITMQ_URL", "amqp://other/")
	assert.Equal(t, "amqp://other/", RabbitURL())
}
