package walk

import (
	"github.com/dep2p/go-overlay/config"
)

// Option 定义配置选项函数
type Option func(*Config)

// Config 游走配置
type Config struct {
	// DefaultTTL 发起游走时的 TTL
	DefaultTTL uint32

	// MaxTTL 接受的最大 TTL
	MaxTTL uint32

	// MaxFanout 每跳最多转发的邻居数，0 表示不限制
	MaxFanout int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	d := config.DefaultWalkConfig()
	return &Config{DefaultTTL: d.DefaultTTL, MaxTTL: d.MaxTTL, MaxFanout: d.MaxFanout}
}

// ConfigFromUnified 从统一配置创建游走配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return &Config{
		DefaultTTL: cfg.Walk.DefaultTTL,
		MaxTTL:     cfg.Walk.MaxTTL,
		MaxFanout:  cfg.Walk.MaxFanout,
	}
}

// WithDefaultTTL 设置发起 TTL
func WithDefaultTTL(ttl uint32) Option {
	return func(c *Config) {
		c.DefaultTTL = ttl
	}
}

// WithMaxTTL 设置最大 TTL
func WithMaxTTL(ttl uint32) Option {
	return func(c *Config) {
		c.MaxTTL = ttl
	}
}

// WithMaxFanout 设置扇出上限
func WithMaxFanout(n int) Option {
	return func(c *Config) {
		c.MaxFanout = n
	}
}
