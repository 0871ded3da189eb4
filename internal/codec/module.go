package codec

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// Params 编解码器依赖参数
type Params struct {
	fx.In

	Metrics *metrics.Metrics `optional:"true"`
}

// Result 编解码器提供结果
type Result struct {
	fx.Out

	Codec     *Codec
	Interface interfaces.Codec
}

// Module 是 codec 的 Fx 模块
var Module = fx.Module("codec",
	fx.Provide(ProvideCodec),
)

// ProvideCodec 创建登记了全部默认类型的编解码器
func ProvideCodec(p Params) (Result, error) {
	reg := NewRegistry()
	if err := RegisterDefaults(reg); err != nil {
		return Result{}, err
	}
	c := New(reg, WithMetrics(p.Metrics))
	return Result{Codec: c, Interface: c}, nil
}
