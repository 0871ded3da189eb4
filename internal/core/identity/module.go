package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
)

// Params 身份模块依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 identity 的 Fx 模块
var Module = fx.Module("identity",
	fx.Provide(ProvideLocal),
)

// ProvideLocal 从统一配置创建本地标识
func ProvideLocal(p Params) (*Local, error) {
	cfg := config.DefaultIdentityConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Identity
	}
	return FromConfig(cfg)
}
