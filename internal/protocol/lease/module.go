package lease

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Params 租约协议依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config                `optional:"true"`
	Local      *identity.Local               `optional:"true"`
	Clock      clock.Clock                   `optional:"true"`
	Tracker    *exchange.Tracker
	Knowledge  interfaces.RouteKnowledge     `optional:"true"`
	Cache      interfaces.RouteCache         `optional:"true"`
	Store      interfaces.LeaseStore         `optional:"true"`
	Credential interfaces.CredentialProvider `optional:"true"`
	Sender     RequestSender                 `optional:"true"`
	Metrics    *metrics.Metrics              `optional:"true"`
}

// Result 租约协议提供结果
type Result struct {
	fx.Out

	Server  *Server
	Manager *Manager
}

// Module 是租约协议的 Fx 模块
var Module = fx.Module("protocol/lease",
	fx.Provide(ProvideLease),
)

// ProvideLease 创建服务端与客户端管理器
func ProvideLease(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)

	var self types.Route
	selfID := types.EmptyPeerID
	if p.Local != nil {
		selfID = p.Local.PeerID()
		if r := p.Local.SelfRoute(); r != nil {
			self = *r
		}
	}

	var referralPeers []types.PeerID
	if p.UnifiedCfg != nil {
		for _, s := range p.UnifiedCfg.Lease.ReferralPeers {
			id, err := types.ParsePeerID(s)
			if err != nil {
				return Result{}, err
			}
			referralPeers = append(referralPeers, id)
		}
	}

	serverOpts := []ServerOption{
		WithLeaseStore(p.Store),
		WithServerCredential(p.Credential),
		WithServerMetrics(p.Metrics),
	}
	if p.Knowledge != nil && len(referralPeers) > 0 {
		serverOpts = append(serverOpts, WithReferralSource(&KnowledgeReferrals{
			Knowledge: p.Knowledge,
			Peers:     referralPeers,
		}))
	}

	sessionOpts := []SessionOption{
		WithCredentialProvider(p.Credential),
		WithRouteCache(p.Cache),
		WithMetrics(p.Metrics),
	}

	return Result{
		Server:  NewServer(self, cfg, p.Clock, serverOpts...),
		Manager: NewManager(selfID, cfg, p.Tracker, p.Sender, sessionOpts...),
	}, nil
}
