package config

import (
	"fmt"
	"time"
)

// LeaseConfig 汇聚点租约配置
type LeaseConfig struct {
	// ===== 客户端 =====

	// RequestTimeout 等待 LeaseResponse 的超时
	RequestTimeout Duration `json:"request_timeout"`

	// RequestedLease 客户端请求的租期
	RequestedLease Duration `json:"requested_lease"`

	// RenewBefore 到期前多久开始续约
	RenewBefore Duration `json:"renew_before"`

	// RequestedReferrals 客户端请求的推荐数
	RequestedReferrals uint32 `json:"requested_referrals"`

	// ===== 服务端 =====

	// MaxLease 服务端授予的最长租期
	MaxLease Duration `json:"max_lease"`

	// MaxReferrals 单个响应最多携带的推荐数
	MaxReferrals int `json:"max_referrals"`

	// ReferralTTL 推荐路由的有效期
	ReferralTTL Duration `json:"referral_ttl"`

	// AdvertisementTTL 服务端通告的有效期
	AdvertisementTTL Duration `json:"advertisement_ttl"`

	// RequestsPerSecond 服务端每秒处理的租约请求上限（0 = 不限制）
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Burst 限流突发量
	Burst int `json:"burst"`

	// MaxClients 同时持有租约的客户端上限（0 = 不限制）
	// 达到上限后新客户端只获得推荐，不授予租约
	MaxClients int `json:"max_clients"`

	// ReferralPeers 作为推荐提供给客户端的其他汇聚节点
	ReferralPeers []string `json:"referral_peers,omitempty"`
}

// DefaultLeaseConfig 返回默认租约配置
func DefaultLeaseConfig() LeaseConfig {
	return LeaseConfig{
		RequestTimeout:     Duration(20 * time.Second),
		RequestedLease:     Duration(10 * time.Minute),
		RenewBefore:        Duration(1 * time.Minute),
		RequestedReferrals: 5,
		MaxLease:           Duration(20 * time.Minute),
		MaxReferrals:       10,
		ReferralTTL:        Duration(5 * time.Minute),
		AdvertisementTTL:   Duration(30 * time.Minute),
		RequestsPerSecond:  100,
		Burst:              200,
	}
}

// Validate 验证租约配置
func (c *LeaseConfig) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: lease.request_timeout must be positive", ErrInvalidConfig)
	}
	if c.RequestedLease <= 0 {
		return fmt.Errorf("%w: lease.requested_lease must be positive", ErrInvalidConfig)
	}
	if c.RenewBefore < 0 || c.RenewBefore >= c.RequestedLease {
		return fmt.Errorf("%w: lease.renew_before must be in [0, requested_lease)", ErrInvalidConfig)
	}
	if c.MaxLease <= 0 {
		return fmt.Errorf("%w: lease.max_lease must be positive", ErrInvalidConfig)
	}
	if c.MaxReferrals < 0 {
		return fmt.Errorf("%w: lease.max_referrals cannot be negative", ErrInvalidConfig)
	}
	if c.ReferralTTL <= 0 || c.AdvertisementTTL <= 0 {
		return fmt.Errorf("%w: lease referral/advertisement ttl must be positive", ErrInvalidConfig)
	}
	// 线上以毫秒编码
	for name, d := range map[string]Duration{
		"requested_lease":   c.RequestedLease,
		"max_lease":         c.MaxLease,
		"referral_ttl":      c.ReferralTTL,
		"advertisement_ttl": c.AdvertisementTTL,
	} {
		if d.Duration()%time.Millisecond != 0 {
			return fmt.Errorf("%w: lease.%s must be whole milliseconds", ErrInvalidConfig, name)
		}
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: lease.requests_per_second cannot be negative", ErrInvalidConfig)
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		return fmt.Errorf("%w: lease.burst must be positive when rate limiting", ErrInvalidConfig)
	}
	if c.MaxClients < 0 {
		return fmt.Errorf("%w: lease.max_clients cannot be negative", ErrInvalidConfig)
	}
	for i, p := range c.ReferralPeers {
		if p == "" {
			return fmt.Errorf("%w: lease.referral_peers[%d] is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}
