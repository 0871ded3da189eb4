package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "route": {"query_timeout": "10s"},
//	  "lease": {"max_lease": "30m", "max_referrals": 5}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "edge": 边缘节点，内存存储，短超时，小缓存
//   - "rendezvous": 汇聚点，持久化租约，更多推荐，更宽松的限流
func ApplyPreset(cfg *Config, presetName string) error {
	switch presetName {
	case "edge":
		cfg.Storage.InMemory = true
		cfg.Route.CacheSize = 256
		cfg.Walk.MaxFanout = 4
		cfg.Lease.RequestTimeout = Duration(10 * time.Second)
	case "rendezvous":
		cfg.Storage.InMemory = false
		cfg.Storage.SyncWrites = true
		cfg.Route.CacheSize = 8192
		cfg.Walk.MaxFanout = 16
		cfg.Lease.MaxReferrals = 20
		cfg.Lease.RequestsPerSecond = 500
		cfg.Lease.Burst = 1000
		cfg.Lease.MaxClients = 10000
	default:
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, presetName)
	}
	return nil
}

// CloneConfig 深拷贝配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	c := *cfg
	c.Identity.Endpoints = slices.Clone(cfg.Identity.Endpoints)
	c.Lease.ReferralPeers = slices.Clone(cfg.Lease.ReferralPeers)
	return &c
}
