// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载配置
//   - 支持预设配置（edge/rendezvous）
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Lease.MaxReferrals = 8
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"errors"

	"go.uber.org/multierr"
)

// ErrInvalidConfig 无效配置
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config 连接核心的完整配置
//
// 配置按照功能模块组织：
//   - Identity: 本地节点标识
//   - Route: 路由发现与路由缓存
//   - Walk: 有限范围游走
//   - Lease: 汇聚点租约（客户端与服务端）
//   - Storage: 租约持久化
//   - Credential: 凭证签发
type Config struct {
	// Identity 本地节点标识
	Identity IdentityConfig `json:"identity"`

	// Route 路由发现配置
	Route RouteConfig `json:"route"`

	// Walk 有限范围游走配置
	Walk WalkConfig `json:"walk"`

	// Lease 租约协议配置
	Lease LeaseConfig `json:"lease"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// Credential 凭证配置
	Credential CredentialConfig `json:"credential"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:   DefaultIdentityConfig(),
		Route:      DefaultRouteConfig(),
		Walk:       DefaultWalkConfig(),
		Lease:      DefaultLeaseConfig(),
		Storage:    DefaultStorageConfig(),
		Credential: DefaultCredentialConfig(),
	}
}

// Validate 验证配置的有效性
//
// 与逐项返回不同，这里汇总所有子配置的错误，一次性报告。
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	var err error
	err = multierr.Append(err, c.Identity.Validate())
	err = multierr.Append(err, c.Route.Validate())
	err = multierr.Append(err, c.Walk.Validate())
	err = multierr.Append(err, c.Lease.Validate())
	err = multierr.Append(err, c.Storage.Validate())
	err = multierr.Append(err, c.Credential.Validate())
	return err
}
