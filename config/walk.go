package config

import "fmt"

// WalkConfig 有限范围游走配置
type WalkConfig struct {
	// DefaultTTL 发起游走时的默认 TTL
	DefaultTTL uint32 `json:"default_ttl"`

	// MaxTTL 接受的最大 TTL，入站信封超过时整条丢弃
	MaxTTL uint32 `json:"max_ttl"`

	// MaxFanout 每跳最多转发的邻居数（0 = 不限制）
	MaxFanout int `json:"max_fanout"`
}

// DefaultWalkConfig 返回默认游走配置
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		DefaultTTL: 3,
		MaxTTL:     10,
		MaxFanout:  8,
	}
}

// Validate 验证游走配置
func (c *WalkConfig) Validate() error {
	if c.DefaultTTL < 1 {
		return fmt.Errorf("%w: walk.default_ttl must be >= 1", ErrInvalidConfig)
	}
	if c.MaxTTL < c.DefaultTTL {
		return fmt.Errorf("%w: walk.max_ttl must be >= walk.default_ttl", ErrInvalidConfig)
	}
	if c.MaxFanout < 0 {
		return fmt.Errorf("%w: walk.max_fanout cannot be negative", ErrInvalidConfig)
	}
	return nil
}
