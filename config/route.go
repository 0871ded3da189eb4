package config

import (
	"fmt"
	"time"
)

// RouteConfig 路由发现与缓存配置
type RouteConfig struct {
	// QueryTimeout 等待 RouteResponse 的超时
	QueryTimeout Duration `json:"query_timeout"`

	// MaxHops 接受的最大跳数（超过的候选路由不予使用）
	MaxHops int `json:"max_hops"`

	// CacheSize 路由缓存容量（目的节点数）
	CacheSize int `json:"cache_size"`

	// CandidatesPerPeer 每个目的节点保留的候选路由数
	CandidatesPerPeer int `json:"candidates_per_peer"`

	// RouteTTL 路由默认有效期
	RouteTTL Duration `json:"route_ttl"`
}

// DefaultRouteConfig 返回默认路由配置
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		QueryTimeout:      Duration(15 * time.Second),
		MaxHops:           8,
		CacheSize:         1024,
		CandidatesPerPeer: 4,
		RouteTTL:          Duration(20 * time.Minute),
	}
}

// Validate 验证路由配置
func (c *RouteConfig) Validate() error {
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("%w: route.query_timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxHops <= 0 {
		return fmt.Errorf("%w: route.max_hops must be positive", ErrInvalidConfig)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%w: route.cache_size must be positive", ErrInvalidConfig)
	}
	if c.CandidatesPerPeer <= 0 {
		return fmt.Errorf("%w: route.candidates_per_peer must be positive", ErrInvalidConfig)
	}
	if c.RouteTTL <= 0 {
		return fmt.Errorf("%w: route.route_ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
