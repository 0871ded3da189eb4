package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidateAll 验证整个配置，Config.Validate 的显式别名
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 修正常见的取值问题后再验证
//
// 可修正的问题：
//   - walk.max_ttl 小于 walk.default_ttl -> 提升到 default_ttl
//   - lease.renew_before 不小于 requested_lease -> 取 requested_lease 的十分之一
//   - lease.requested_lease 超过 lease.max_lease -> 降到 max_lease
//   - 超时为非正数 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Walk.MaxTTL < c.Walk.DefaultTTL {
		c.Walk.MaxTTL = c.Walk.DefaultTTL
	}
	if c.Route.QueryTimeout <= 0 {
		c.Route.QueryTimeout = DefaultRouteConfig().QueryTimeout
	}
	if c.Lease.RequestTimeout <= 0 {
		c.Lease.RequestTimeout = DefaultLeaseConfig().RequestTimeout
	}
	if c.Lease.MaxLease > 0 && c.Lease.RequestedLease > c.Lease.MaxLease {
		c.Lease.RequestedLease = c.Lease.MaxLease
	}
	if c.Lease.RequestedLease > 0 && c.Lease.RenewBefore >= c.Lease.RequestedLease {
		c.Lease.RenewBefore = c.Lease.RequestedLease / 10
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，失败时 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}

// ValidateCompatibility 检查各子配置之间的兼容性
//
//   - 租约请求超时必须短于请求的租期，否则续约永远来不及
//   - 路由缓存每节点候选数不能超过缓存总容量
//   - 开启限流时突发容量至少为 1
//   - 推荐节点列表只在允许推荐时有意义
func ValidateCompatibility(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}

	if time.Duration(c.Lease.RequestTimeout) >= time.Duration(c.Lease.RequestedLease) {
		return fmt.Errorf("lease.request_timeout (%s) must be shorter than lease.requested_lease (%s)",
			c.Lease.RequestTimeout, c.Lease.RequestedLease)
	}
	if c.Route.CandidatesPerPeer > c.Route.CacheSize {
		return fmt.Errorf("route.candidates_per_peer (%d) exceeds route.cache_size (%d)",
			c.Route.CandidatesPerPeer, c.Route.CacheSize)
	}
	if c.Lease.RequestsPerSecond > 0 && c.Lease.Burst < 1 {
		return fmt.Errorf("lease.burst must be >= 1 when rate limiting is enabled")
	}
	if len(c.Lease.ReferralPeers) > 0 && c.Lease.MaxReferrals == 0 {
		return fmt.Errorf("lease.referral_peers set but lease.max_referrals is 0")
	}
	return nil
}

// ValidateForRole 检查配置是否适合节点角色
//
// 角色：
//   - "edge": 边缘节点，不持久化租约
//   - "rendezvous": 汇聚节点，持久化租约并提供推荐
func ValidateForRole(c *Config, role string) error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	switch role {
	case "edge":
		if !c.Storage.InMemory {
			return errors.New("edge: lease storage should be in-memory")
		}
	case "rendezvous":
		if c.Storage.InMemory {
			return errors.New("rendezvous: leases should be persisted")
		}
		if c.Lease.MaxReferrals == 0 {
			return errors.New("rendezvous: max_referrals should be positive")
		}
	default:
		return fmt.Errorf("unknown role: %s", role)
	}
	return nil
}
