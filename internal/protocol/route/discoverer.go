package route

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// exchangeKind 交换类型标签
const exchangeKind = "route"

// timeZero 表示使用缓存默认 TTL
var timeZero time.Time

// QuerySender 查询发送器
//
// 由传输层实现：把查询连同关联 ID 发往一个或多个可能知道路由的节点。
type QuerySender interface {
	SendQuery(ctx context.Context, id uuid.UUID, query *RouteQuery) error
}

// Discoverer 路由发现发起方
type Discoverer struct {
	cache   interfaces.RouteCache
	tracker *exchange.Tracker
	sender  QuerySender
	self    *types.Route
	config  *Config
}

// NewDiscoverer 创建发起方
func NewDiscoverer(cache interfaces.RouteCache, tracker *exchange.Tracker, sender QuerySender, self *types.Route, opts ...Option) *Discoverer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Discoverer{
		cache:   cache,
		tracker: tracker,
		sender:  sender,
		self:    self,
		config:  cfg,
	}
}

// Discover 查找到 dest 的路由
//
// 优先使用缓存中避开 badHops 的路由；否则发出查询并等待应答，
// 直到收到应答、超时或 ctx 取消。接受的路由写入缓存。
func (d *Discoverer) Discover(ctx context.Context, dest types.PeerID, badHops []types.PeerID) (types.Route, error) {
	bad := types.NewPeerSet(badHops...)
	if d.cache != nil {
		if r, ok := d.cache.LookupRoute(dest); ok && r.HopsAvoid(bad) {
			return r, nil
		}
	}
	if d.sender == nil {
		return types.Route{}, ErrNoSender
	}

	q, err := BuildQuery(dest, d.self, badHops)
	if err != nil {
		return types.Route{}, err
	}

	// 先建定时器再登记，Pending() 可见时超时已经开始计时
	timer := d.tracker.Clock().Timer(d.config.QueryTimeout)
	defer timer.Stop()

	id, ch := d.tracker.Register(exchangeKind, d.config.QueryTimeout)
	if err := d.sender.SendQuery(ctx, id, q); err != nil {
		d.tracker.Cancel(id)
		return types.Route{}, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	logger.Debug("已发出路由查询", "id", id, "dest", dest.ShortString(), "badHops", len(q.BadHops))

	select {
	case <-ctx.Done():
		d.tracker.Cancel(id)
		return types.Route{}, ctx.Err()
	case <-timer.C:
		d.tracker.Cancel(id)
		return types.Route{}, ErrQueryTimeout
	case msg, ok := <-ch:
		if !ok {
			return types.Route{}, ErrQueryTimeout
		}
		resp, ok := msg.(*RouteResponse)
		if !ok {
			return types.Route{}, fmt.Errorf("%w: %T", ErrUnexpectedResponse, msg)
		}
		return d.accept(q, resp)
	}
}

// accept 检查应答并写入缓存
func (d *Discoverer) accept(q *RouteQuery, resp *RouteResponse) (types.Route, error) {
	now := d.tracker.Clock().Now()

	if resp.SourceRoute != nil && d.cache != nil {
		d.cache.StoreRoute(*resp.SourceRoute, now, timeZero)
	}
	if !resp.HasDestinationRoute() {
		return types.Route{}, ErrNoRoute
	}

	r := *resp.DestinationRoute
	switch {
	case r.Destination() != q.Destination:
		return types.Route{}, fmt.Errorf("%w: destination %s", ErrRejectedRoute, r.Destination())
	case !r.HopsAvoid(q.BadHopSet()):
		return types.Route{}, fmt.Errorf("%w: traverses a bad hop", ErrRejectedRoute)
	case d.config.MaxHops > 0 && r.HopCount() > d.config.MaxHops:
		return types.Route{}, fmt.Errorf("%w: %d hops", ErrRejectedRoute, r.HopCount())
	}

	if d.cache != nil {
		d.cache.StoreRoute(r, now, timeZero)
	}
	logger.Debug("接受路由", "route", r.String())
	return r, nil
}

// HandleResponse 投递收到的应答
//
// 对应的查询已超时或不存在时返回 ErrUnknownCorrelation，应答被丢弃。
func (d *Discoverer) HandleResponse(id uuid.UUID, resp *RouteResponse) error {
	if resp == nil {
		return ErrUnexpectedResponse
	}
	if err := resp.Validate(); err != nil {
		return err
	}
	if !d.tracker.Resolve(id, exchangeKind, resp) {
		return ErrUnknownCorrelation
	}
	return nil
}
