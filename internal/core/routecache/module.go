package routecache

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// evictInterval 后台淘汰周期
const evictInterval = 30 * time.Second

// Params Cache 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
}

// Result Cache 提供结果
type Result struct {
	fx.Out

	Cache     *Cache
	Routes    interfaces.RouteCache
	Knowledge interfaces.RouteKnowledge
}

// Module 是 routecache 的 Fx 模块
var Module = fx.Module("routecache",
	fx.Provide(ProvideCache),
	fx.Invoke(registerLifecycle),
)

// ProvideCache 创建缓存
func ProvideCache(p Params) (Result, error) {
	c, err := New(ConfigFromUnified(p.UnifiedCfg), p.Clock)
	if err != nil {
		return Result{}, err
	}
	return Result{Cache: c, Routes: c, Knowledge: c}, nil
}

func registerLifecycle(lc fx.Lifecycle, c *Cache) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := c.clock.Ticker(evictInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case now := <-ticker.C:
						c.EvictExpired(now)
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
