package route

import (
	"fmt"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              RouteQuery
// ============================================================================

// RouteQuery 路由查询
type RouteQuery struct {
	// Destination 目的节点（必填）
	Destination types.PeerID

	// SourceRoute 到查询方自身的路由（可选），应答方据此回程
	SourceRoute *types.Route

	// BadHops 查询方已知不可用的节点，应答路由不得经过
	BadHops []types.PeerID
}

// BuildQuery 构造路由查询
//
// knownBadHops 中的重复项被合并；包含目的节点本身时返回 InconsistentFields。
func BuildQuery(dest types.PeerID, knownSourceRoute *types.Route, knownBadHops []types.PeerID) (*RouteQuery, error) {
	seen := types.NewPeerSet()
	bad := make([]types.PeerID, 0, len(knownBadHops))
	for _, p := range knownBadHops {
		if seen.Has(p) {
			continue
		}
		seen[p] = struct{}{}
		bad = append(bad, p)
	}

	q := &RouteQuery{Destination: dest, BadHops: bad}
	if knownSourceRoute != nil {
		r := *knownSourceRoute
		q.SourceRoute = &r
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// Validate 校验查询
func (q *RouteQuery) Validate() error {
	if err := q.Destination.Validate("destination_peer"); err != nil {
		return err
	}
	if q.SourceRoute != nil && q.SourceRoute.IsZero() {
		return types.MissingField("source_route.destination_peer")
	}

	seen := types.NewPeerSet()
	for i, p := range q.BadHops {
		if err := p.Validate(fmt.Sprintf("bad_hops[%d]", i)); err != nil {
			return err
		}
		if p == q.Destination {
			return types.InconsistentFields(fmt.Sprintf("destination %s is listed as a bad hop", p))
		}
		if seen.Has(p) {
			return types.InconsistentFields(fmt.Sprintf("bad hop %s listed twice", p))
		}
		seen[p] = struct{}{}
	}
	return nil
}

// BadHopSet 返回 bad hops 集合
func (q *RouteQuery) BadHopSet() types.PeerSet {
	return types.NewPeerSet(q.BadHops...)
}

// IsBadHop 检查节点是否被查询方标记为不可用
func (q *RouteQuery) IsBadHop(p types.PeerID) bool {
	for _, b := range q.BadHops {
		if b == p {
			return true
		}
	}
	return false
}
