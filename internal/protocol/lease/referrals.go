package lease

import (
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ReferralSource 推荐来源
//
// 返回到其他汇聚节点的路由，按优先级排序，不得包含 exclude。
type ReferralSource interface {
	Referrals(exclude types.PeerID, limit int) []types.Route
}

// KnowledgeReferrals 从本地路由知识中为已知汇聚节点挑选路由
type KnowledgeReferrals struct {
	Knowledge interfaces.RouteKnowledge
	Peers     []types.PeerID
}

var _ ReferralSource = (*KnowledgeReferrals)(nil)

// Referrals 按 Peers 顺序为每个汇聚节点取最优路由
func (k *KnowledgeReferrals) Referrals(exclude types.PeerID, limit int) []types.Route {
	if k.Knowledge == nil || limit <= 0 {
		return nil
	}
	var out []types.Route
	for _, p := range k.Peers {
		if len(out) == limit {
			break
		}
		if p == exclude {
			continue
		}
		var best *interfaces.RouteCandidate
		for _, c := range k.Knowledge.Candidates(p) {
			if c.Route.Contains(exclude) {
				continue
			}
			if best == nil || interfaces.CompareCandidates(c, *best) < 0 {
				cc := c
				best = &cc
			}
		}
		if best != nil {
			out = append(out, best.Route)
		}
	}
	return out
}
