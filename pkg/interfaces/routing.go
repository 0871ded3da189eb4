package interfaces

import (
	"time"

	"github.com/dep2p/go-overlay/pkg/types"
)

// RouteCandidate 候选路由
type RouteCandidate struct {
	// Route 已校验的路由
	Route types.Route

	// ValidatedAt 最近一次确认该路由可用的时间
	ValidatedAt time.Time
}

// RouteKnowledge 本地路由知识
//
// 应答路由查询时，由它提供到目的节点的全部候选路由。
type RouteKnowledge interface {
	// Candidates 返回到 dest 的候选路由（顺序不作保证）
	Candidates(dest types.PeerID) []RouteCandidate
}

// RouteCache 路由表 / 租约缓存
//
// 存储已校验的路由与租约，按节点索引，按携带的过期时间淘汰。
type RouteCache interface {
	RouteKnowledge

	// LookupRoute 返回到 peer 的最优路由
	LookupRoute(peer types.PeerID) (types.Route, bool)

	// StoreRoute 存储路由，expiresAt 为零表示使用缓存默认 TTL
	StoreRoute(route types.Route, validatedAt, expiresAt time.Time)

	// InvalidateRoutes 删除到 peer 的全部路由
	InvalidateRoutes(peer types.PeerID)

	// StoreLease 记录 peer 的租约到期时间
	StoreLease(peer types.PeerID, expiresAt time.Time)

	// LeaseExpiry 返回 peer 的租约到期时间
	LeaseExpiry(peer types.PeerID) (time.Time, bool)

	// EvictExpired 淘汰 now 时刻已过期的路由与租约，返回淘汰数量
	EvictExpired(now time.Time) int
}

// CompareCandidates 候选路由排序：跳数少者优先，其次最近校验者优先
//
// 返回值语义同 slices.SortFunc 的比较函数。
func CompareCandidates(a, b RouteCandidate) int {
	if d := a.Route.HopCount() - b.Route.HopCount(); d != 0 {
		return d
	}
	return b.ValidatedAt.Compare(a.ValidatedAt)
}
