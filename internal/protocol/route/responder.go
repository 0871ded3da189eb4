package route

import (
	"slices"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("protocol/route")

// AnswerQuery 应答路由查询
//
// 候选路由中，目的节点不符、经过 bad hop 或有环的一律丢弃；
// 剩余候选按跳数从少到多、校验时间从新到旧排序取第一条。
// 没有合格候选时返回 DestinationRoute 为 nil 的应答。
// self 为到应答方自身的路由（可选），原样回显在 SourceRoute 中。
func AnswerQuery(query *RouteQuery, knowledge interfaces.RouteKnowledge, self *types.Route) (*RouteResponse, error) {
	return answer(query, knowledge, self, 0)
}

func answer(query *RouteQuery, knowledge interfaces.RouteKnowledge, self *types.Route, maxHops int) (*RouteResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var dest *types.Route
	if knowledge != nil {
		if r, ok := selectCandidate(query, knowledge.Candidates(query.Destination), maxHops); ok {
			dest = &r
		}
	}
	return NewRouteResponse(dest, self)
}

// selectCandidate 过滤并排序候选路由
func selectCandidate(query *RouteQuery, cands []interfaces.RouteCandidate, maxHops int) (types.Route, bool) {
	bad := query.BadHopSet()
	ok := make([]interfaces.RouteCandidate, 0, len(cands))
	for _, c := range cands {
		r := c.Route
		switch {
		case r.IsZero(), r.Destination() != query.Destination:
			continue
		case r.HasLoop():
			continue
		case !r.HopsAvoid(bad):
			logger.Debug("丢弃经过 bad hop 的候选路由", "dest", query.Destination.ShortString(), "route", r.String())
			continue
		case maxHops > 0 && r.HopCount() > maxHops:
			continue
		}
		ok = append(ok, c)
	}
	if len(ok) == 0 {
		return types.Route{}, false
	}
	slices.SortStableFunc(ok, interfaces.CompareCandidates)
	return ok[0].Route, true
}

// ============================================================================
//                              Responder
// ============================================================================

// Responder 路由查询应答者
//
// 在 AnswerQuery 之上附加跳数上限、日志与指标。
type Responder struct {
	knowledge interfaces.RouteKnowledge
	self      *types.Route
	config    *Config
	metrics   *metrics.Metrics
}

// NewResponder 创建应答者
func NewResponder(knowledge interfaces.RouteKnowledge, self *types.Route, m *metrics.Metrics, opts ...Option) *Responder {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Responder{knowledge: knowledge, self: self, config: cfg, metrics: m}
}

// Answer 应答一条查询
func (r *Responder) Answer(query *RouteQuery) (*RouteResponse, error) {
	resp, err := answer(query, r.knowledge, r.self, r.config.MaxHops)
	if err != nil {
		r.metrics.ObserveValidation(err)
		logger.Warn("拒绝非法路由查询", "error", err)
		return nil, err
	}
	r.metrics.ObserveRouteAnswer(resp.HasDestinationRoute())
	return resp, nil
}
