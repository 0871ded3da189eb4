package exchange

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/internal/core/metrics"
)

// sweepInterval 后台清理周期
const sweepInterval = 5 * time.Second

// Params Tracker 依赖参数
type Params struct {
	fx.In

	Clock   clock.Clock      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// Module 是 exchange 的 Fx 模块
var Module = fx.Module("exchange",
	fx.Provide(func(p Params) *Tracker {
		return NewTracker(p.Clock, p.Metrics)
	}),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, t *Tracker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := t.clock.Ticker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if n := t.Sweep(); n > 0 {
							logger.Debug("清理超时交换", "count", n)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
