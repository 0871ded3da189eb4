package overlay

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	preset     string
	configFile string

	peerID    string
	endpoints []string

	// 协作者
	querySender   route.QuerySender
	walkSender    walk.Sender
	peerSelector  walk.PeerSelector
	requestSender lease.RequestSender

	clock      clock.Clock
	registerer prometheus.Registerer

	userFxOptions []fx.Option
}

// toConfig 生成最终配置
//
// 优先级：配置文件 / WithConfig < 预设 < 单项选项。
func (o *options) toConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.configFile != "":
		c, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	case o.config != nil:
		cfg = config.CloneConfig(o.config)
	default:
		cfg = config.NewConfig()
	}

	if o.preset != "" {
		if err := config.ApplyPreset(cfg, o.preset); err != nil {
			return nil, err
		}
	}
	if o.peerID != "" {
		cfg.Identity.PeerID = o.peerID
	}
	if len(o.endpoints) > 0 {
		cfg.Identity.Endpoints = append([]string(nil), o.endpoints...)
	}
	return cfg, nil
}

// WithConfig 使用完整配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithPreset 应用预设（edge / rendezvous）
func WithPreset(name string) Option {
	return func(o *options) error {
		if !IsValidPreset(name) {
			return ErrUnknownPreset
		}
		o.preset = name
		return nil
	}
}

// WithPeerID 设置本地 PeerID
func WithPeerID(id string) Option {
	return func(o *options) error {
		o.peerID = id
		return nil
	}
}

// WithEndpoints 设置本地可达端点
func WithEndpoints(eps ...string) Option {
	return func(o *options) error {
		o.endpoints = append(o.endpoints, eps...)
		return nil
	}
}

// WithQuerySender 注入路由查询发送器
func WithQuerySender(s route.QuerySender) Option {
	return func(o *options) error {
		o.querySender = s
		return nil
	}
}

// WithWalkTransport 注入游走的邻居选择器与发送器
func WithWalkTransport(selector walk.PeerSelector, sender walk.Sender) Option {
	return func(o *options) error {
		o.peerSelector = selector
		o.walkSender = sender
		return nil
	}
}

// WithLeaseSender 注入租约请求发送器
func WithLeaseSender(s lease.RequestSender) Option {
	return func(o *options) error {
		o.requestSender = s
		return nil
	}
}

// WithClock 注入时钟（测试用）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithRegisterer 指定指标注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
