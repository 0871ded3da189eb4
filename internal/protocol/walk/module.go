package walk

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Params 游走模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	Local      *identity.Local  `optional:"true"`
	Selector   PeerSelector     `optional:"true"`
	Sender     Sender           `optional:"true"`
	Metrics    *metrics.Metrics `optional:"true"`
}

// Module 是游走协议的 Fx 模块
var Module = fx.Module("protocol/walk",
	fx.Provide(ProvideForwarder),
)

// ProvideForwarder 创建转发器
func ProvideForwarder(p Params) *Forwarder {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	self := types.EmptyPeerID
	if p.Local != nil {
		self = p.Local.PeerID()
	}
	return NewForwarder(self, p.Selector, p.Sender, p.Metrics,
		WithDefaultTTL(cfg.DefaultTTL),
		WithMaxTTL(cfg.MaxTTL),
		WithMaxFanout(cfg.MaxFanout),
	)
}
