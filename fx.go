package overlay

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/codec"
	"github.com/dep2p/go-overlay/internal/core/credential"
	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/routecache"
	"github.com/dep2p/go-overlay/internal/core/storage"
	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. Core: Metrics → Exchange → Identity → Credential → RouteCache → Storage
//  2. Codec
//  3. Protocol: Route → Walk → Lease
func buildFxApp(cfg *config.Config, o *options, node *Node) (*fx.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.ValidateCompatibility(cfg); err != nil {
		return nil, fmt.Errorf("config compatibility check failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 1. 注入的协作者
	// ════════════════════════════════════════════════════════════════════════
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.querySender != nil {
		s := o.querySender
		modules = append(modules, fx.Provide(func() route.QuerySender { return s }))
	}
	if o.peerSelector != nil {
		s := o.peerSelector
		modules = append(modules, fx.Provide(func() walk.PeerSelector { return s }))
	}
	if o.walkSender != nil {
		s := o.walkSender
		modules = append(modules, fx.Provide(func() walk.Sender { return s }))
	}
	if o.requestSender != nil {
		s := o.requestSender
		modules = append(modules, fx.Provide(func() lease.RequestSender { return s }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. Core
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,
		exchange.Module,
		identity.Module,
		credential.Module,
		routecache.Module,
		storage.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. Codec + Protocol
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		codec.Module,
		route.Module,
		walk.Module,
		lease.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.userFxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// 5. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// 禁用 Fx 日志输出（避免干扰用户日志）
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Local       *identity.Local
	Codec       *codec.Codec
	Tracker     *exchange.Tracker
	Cache       *routecache.Cache
	Store       *storage.LeaseStore
	Metrics     *metrics.Metrics
	Credential  *credential.Provider
	Responder   *route.Responder
	Discoverer  *route.Discoverer
	Forwarder   *walk.Forwarder
	LeaseServer *lease.Server
	Leases      *lease.Manager
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(p nodeInjectParams) {
		node.local = p.Local
		node.codec = p.Codec
		node.tracker = p.Tracker
		node.cache = p.Cache
		node.store = p.Store
		node.metrics = p.Metrics
		node.credential = p.Credential
		node.responder = p.Responder
		node.discoverer = p.Discoverer
		node.forwarder = p.Forwarder
		node.leaseServer = p.LeaseServer
		node.leases = p.Leases
	}
}
