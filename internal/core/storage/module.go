package storage

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// Params Storage 模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Result Storage 模块提供的结果
type Result struct {
	fx.Out

	Store  *LeaseStore
	Leases interfaces.LeaseStore
}

// Module 是 storage 的 Fx 模块
//
// 生命周期:
//   - OnStart: 清理上次运行遗留的过期租约
//   - OnStop: 关闭存储
var Module = fx.Module("storage",
	fx.Provide(ProvideStore),
	fx.Invoke(registerLifecycle),
)

// ProvideStore 打开租约存储
func ProvideStore(p Params) (Result, error) {
	s, err := Open(ConfigFromUnified(p.UnifiedCfg), p.Clock)
	if err != nil {
		return Result{}, err
	}
	return Result{Store: s, Leases: s}, nil
}

func registerLifecycle(lc fx.Lifecycle, s *LeaseStore) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			n, err := s.EvictExpired(s.clock.Now())
			if err != nil {
				return err
			}
			logger.Info("租约存储已启动", "evicted", n)
			return nil
		},
		OnStop: func(context.Context) error {
			if err := s.Close(); err != nil {
				logger.Warn("租约存储关闭失败", "error", err)
				return err
			}
			logger.Info("租约存储已关闭")
			return nil
		},
	})
}
