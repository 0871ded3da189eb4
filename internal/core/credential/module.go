package credential

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// Params Provider 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Result Provider 提供结果
type Result struct {
	fx.Out

	Provider   *Provider
	Credential interfaces.CredentialProvider
}

// Module 是 credential 的 Fx 模块
var Module = fx.Module("credential",
	fx.Provide(ProvideProvider),
)

// ProvideProvider 从统一配置创建凭证提供者
func ProvideProvider(p Params) (Result, error) {
	var key []byte
	if p.UnifiedCfg != nil {
		k, err := p.UnifiedCfg.Credential.Key()
		if err != nil {
			return Result{}, err
		}
		key = k
	}
	prov, err := New(key)
	if err != nil {
		return Result{}, err
	}
	return Result{Provider: prov, Credential: prov}, nil
}
