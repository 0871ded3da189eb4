package route

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// Params 路由协议依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config            `optional:"true"`
	Local      *identity.Local           `optional:"true"`
	Knowledge  interfaces.RouteKnowledge `optional:"true"`
	Cache      interfaces.RouteCache     `optional:"true"`
	Tracker    *exchange.Tracker
	Sender     QuerySender      `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Result 路由协议提供结果
type Result struct {
	fx.Out

	Responder  *Responder
	Discoverer *Discoverer
}

// Module 是路由协议的 Fx 模块
var Module = fx.Module("protocol/route",
	fx.Provide(ProvideRoute),
)

// ProvideRoute 创建应答者与发起方
func ProvideRoute(p Params) Result {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	opts := []Option{WithQueryTimeout(cfg.QueryTimeout), WithMaxHops(cfg.MaxHops)}

	self := p.Local.SelfRouteOrNil()
	return Result{
		Responder:  NewResponder(p.Knowledge, self, p.Metrics, opts...),
		Discoverer: NewDiscoverer(p.Cache, p.Tracker, p.Sender, self, opts...),
	}
}
