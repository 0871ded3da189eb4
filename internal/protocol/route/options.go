package route

import (
	"time"

	"github.com/dep2p/go-overlay/config"
)

// Option 定义配置选项函数
type Option func(*Config)

// Config 路由协议配置
type Config struct {
	// QueryTimeout 等待应答的超时
	QueryTimeout time.Duration

	// MaxHops 接受的最大跳数，0 表示不限制
	MaxHops int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	d := config.DefaultRouteConfig()
	return &Config{
		QueryTimeout: d.QueryTimeout.Duration(),
		MaxHops:      d.MaxHops,
	}
}

// ConfigFromUnified 从统一配置创建路由协议配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return &Config{
		QueryTimeout: cfg.Route.QueryTimeout.Duration(),
		MaxHops:      cfg.Route.MaxHops,
	}
}

// WithQueryTimeout 设置查询超时
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.QueryTimeout = d
	}
}

// WithMaxHops 设置最大跳数
func WithMaxHops(n int) Option {
	return func(c *Config) {
		c.MaxHops = n
	}
}
