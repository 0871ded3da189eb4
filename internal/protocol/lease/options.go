package lease

import (
	"time"

	"github.com/dep2p/go-overlay/config"
)

// Option 定义配置选项函数
type Option func(*Config)

// Config 租约协议配置
type Config struct {
	// ===== 客户端 =====

	// RequestTimeout 等待响应的超时
	RequestTimeout time.Duration

	// RequestedLease 请求的租期
	RequestedLease time.Duration

	// RenewBefore 到期前多久需要续约
	RenewBefore time.Duration

	// RequestedReferrals 请求的推荐数
	RequestedReferrals uint32

	// ===== 服务端 =====

	// MaxLease 授予的最长租期
	MaxLease time.Duration

	// MaxReferrals 单个响应最多携带的推荐数
	MaxReferrals int

	// ReferralTTL 推荐有效期
	ReferralTTL time.Duration

	// AdvertisementTTL 通告有效期
	AdvertisementTTL time.Duration

	// RequestsPerSecond 每秒请求上限，0 表示不限制
	RequestsPerSecond float64

	// Burst 限流突发量
	Burst int

	// MaxClients 同时持有租约的客户端上限，0 表示不限制
	MaxClients int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	c := config.DefaultLeaseConfig()
	return fromLeaseConfig(&c)
}

// ConfigFromUnified 从统一配置创建租约协议配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return fromLeaseConfig(&cfg.Lease)
}

func fromLeaseConfig(c *config.LeaseConfig) *Config {
	return &Config{
		RequestTimeout:     c.RequestTimeout.Duration(),
		RequestedLease:     c.RequestedLease.Duration(),
		RenewBefore:        c.RenewBefore.Duration(),
		RequestedReferrals: c.RequestedReferrals,
		MaxLease:           c.MaxLease.Duration(),
		MaxReferrals:       c.MaxReferrals,
		ReferralTTL:        c.ReferralTTL.Duration(),
		AdvertisementTTL:   c.AdvertisementTTL.Duration(),
		RequestsPerSecond:  c.RequestsPerSecond,
		Burst:              c.Burst,
		MaxClients:         c.MaxClients,
	}
}

// WithConfig 整体替换配置
func WithConfig(c *Config) Option {
	return func(dst *Config) {
		*dst = *c
	}
}

// WithRequestTimeout 设置请求超时
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithRequestedLease 设置请求租期
func WithRequestedLease(d time.Duration) Option {
	return func(c *Config) {
		c.RequestedLease = d
	}
}

// WithMaxLease 设置最长租期
func WithMaxLease(d time.Duration) Option {
	return func(c *Config) {
		c.MaxLease = d
	}
}

// WithMaxReferrals 设置推荐上限
func WithMaxReferrals(n int) Option {
	return func(c *Config) {
		c.MaxReferrals = n
	}
}

// WithRateLimit 设置限流
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Config) {
		c.RequestsPerSecond = rps
		c.Burst = burst
	}
}

// WithMaxClients 设置客户端上限
func WithMaxClients(n int) Option {
	return func(c *Config) {
		c.MaxClients = n
	}
}

// NewConfig 在默认配置上应用选项
func NewConfig(opts ...Option) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}
