package routecache

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/golang-lru/arc/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/routecache")

// Config 缓存配置
type Config struct {
	// Size 路由缓存容量（目的节点数），同时作为租约缓存容量
	Size int

	// CandidatesPerPeer 每个目的节点保留的候选路由数
	CandidatesPerPeer int

	// DefaultTTL 未指定过期时间时路由的有效期
	DefaultTTL time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	c := config.DefaultRouteConfig()
	return Config{
		Size:              c.CacheSize,
		CandidatesPerPeer: c.CandidatesPerPeer,
		DefaultTTL:        c.RouteTTL.Duration(),
	}
}

// ConfigFromUnified 从统一配置创建缓存配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Size:              cfg.Route.CacheSize,
		CandidatesPerPeer: cfg.Route.CandidatesPerPeer,
		DefaultTTL:        cfg.Route.RouteTTL.Duration(),
	}
}

// entry 缓存的一条候选路由
type entry struct {
	candidate interfaces.RouteCandidate
	expiresAt time.Time
}

// Cache 路由表 / 租约缓存
type Cache struct {
	cfg   Config
	clock clock.Clock

	// mu 保护 routes 中每个值的读-改-写
	mu     sync.Mutex
	routes *arc.ARCCache[types.PeerID, []entry]
	leases *lru.Cache[types.PeerID, time.Time]
}

var _ interfaces.RouteCache = (*Cache)(nil)

// New 创建缓存，clk 为 nil 时使用系统时钟
func New(cfg Config, clk clock.Clock) (*Cache, error) {
	if cfg.Size <= 0 || cfg.CandidatesPerPeer <= 0 {
		return nil, fmt.Errorf("%w: size=%d candidates=%d", ErrInvalidSize, cfg.Size, cfg.CandidatesPerPeer)
	}
	if clk == nil {
		clk = clock.New()
	}
	routes, err := arc.NewARC[types.PeerID, []entry](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("create route cache: %w", err)
	}
	leases, err := lru.New[types.PeerID, time.Time](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("create lease cache: %w", err)
	}
	return &Cache{cfg: cfg, clock: clk, routes: routes, leases: leases}, nil
}

// ============================================================================
//                              路由
// ============================================================================

// Candidates 返回到 dest 的未过期候选路由（已排序）
func (c *Cache) Candidates(dest types.PeerID) []interfaces.RouteCandidate {
	now := c.clock.Now()

	c.mu.Lock()
	entries, ok := c.routes.Get(dest)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	out := make([]interfaces.RouteCandidate, 0, len(entries))
	for _, e := range entries {
		if now.Before(e.expiresAt) {
			out = append(out, e.candidate)
		}
	}
	return out
}

// LookupRoute 返回到 peer 的最优路由
func (c *Cache) LookupRoute(peer types.PeerID) (types.Route, bool) {
	cands := c.Candidates(peer)
	if len(cands) == 0 {
		return types.Route{}, false
	}
	return cands[0].Route, true
}

// StoreRoute 存储路由
//
// 相同路由覆盖旧记录；超出每节点上限时淘汰排序最后的候选。
func (c *Cache) StoreRoute(route types.Route, validatedAt, expiresAt time.Time) {
	if route.IsZero() {
		return
	}
	if expiresAt.IsZero() {
		expiresAt = validatedAt.Add(c.cfg.DefaultTTL)
	}
	dest := route.Destination()

	c.mu.Lock()
	defer c.mu.Unlock()

	old, _ := c.routes.Peek(dest)
	entries := make([]entry, 0, len(old)+1)
	for _, e := range old {
		if !e.candidate.Route.Equal(route) {
			entries = append(entries, e)
		}
	}
	entries = append(entries, entry{
		candidate: interfaces.RouteCandidate{Route: route, ValidatedAt: validatedAt},
		expiresAt: expiresAt,
	})
	slices.SortStableFunc(entries, func(a, b entry) int {
		return interfaces.CompareCandidates(a.candidate, b.candidate)
	})
	if len(entries) > c.cfg.CandidatesPerPeer {
		entries = entries[:c.cfg.CandidatesPerPeer]
	}
	c.routes.Add(dest, entries)

	logger.Debug("存储路由", "dest", dest.ShortString(), "hops", route.HopCount(), "candidates", len(entries))
}

// InvalidateRoutes 删除到 peer 的全部路由
func (c *Cache) InvalidateRoutes(peer types.PeerID) {
	c.mu.Lock()
	c.routes.Remove(peer)
	c.mu.Unlock()
}

// ============================================================================
//                              租约
// ============================================================================

// StoreLease 记录 peer 的租约到期时间
func (c *Cache) StoreLease(peer types.PeerID, expiresAt time.Time) {
	c.leases.Add(peer, expiresAt)
}

// LeaseExpiry 返回 peer 未过期租约的到期时间
func (c *Cache) LeaseExpiry(peer types.PeerID) (time.Time, bool) {
	exp, ok := c.leases.Get(peer)
	if !ok || !c.clock.Now().Before(exp) {
		return time.Time{}, false
	}
	return exp, true
}

// ============================================================================
//                              淘汰
// ============================================================================

// EvictExpired 淘汰 now 时刻已过期的路由与租约
func (c *Cache) EvictExpired(now time.Time) int {
	evicted := 0

	c.mu.Lock()
	for _, dest := range c.routes.Keys() {
		entries, ok := c.routes.Peek(dest)
		if !ok {
			continue
		}
		kept := entries[:0:0]
		for _, e := range entries {
			if now.Before(e.expiresAt) {
				kept = append(kept, e)
			}
		}
		evicted += len(entries) - len(kept)
		if len(kept) == 0 {
			c.routes.Remove(dest)
		} else if len(kept) != len(entries) {
			c.routes.Add(dest, kept)
		}
	}
	c.mu.Unlock()

	for _, peer := range c.leases.Keys() {
		exp, ok := c.leases.Peek(peer)
		if ok && !now.Before(exp) {
			c.leases.Remove(peer)
			evicted++
		}
	}

	if evicted > 0 {
		logger.Debug("淘汰过期条目", "count", evicted)
	}
	return evicted
}

// Len 返回缓存的目的节点数
func (c *Cache) Len() int {
	return c.routes.Len()
}
