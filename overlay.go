package overlay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/codec"
	"github.com/dep2p/go-overlay/internal/core/credential"
	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/routecache"
	"github.com/dep2p/go-overlay/internal/core/storage"
	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/srdi"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("overlay")

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 15 * time.Second
)

// Node 连接核心节点
type Node struct {
	mu      sync.Mutex
	app     *fx.App
	config  *config.Config
	started bool
	closed  bool

	local       *identity.Local
	codec       *codec.Codec
	tracker     *exchange.Tracker
	cache       *routecache.Cache
	store       *storage.LeaseStore
	metrics     *metrics.Metrics
	credential  *credential.Provider
	responder   *route.Responder
	discoverer  *route.Discoverer
	forwarder   *walk.Forwarder
	leaseServer *lease.Server
	leases      *lease.Manager
}

// New 创建节点（未启动）
func New(opts ...Option) (*Node, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	cfg, err := o.toConfig()
	if err != nil {
		return nil, err
	}

	n := &Node{config: cfg}
	app, err := buildFxApp(cfg, o, n)
	if err != nil {
		return nil, err
	}
	n.app = app
	return n, nil
}

// Start 启动节点
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := n.app.Start(startCtx); err != nil {
		logger.Error("节点启动失败", "error", err)
		return fmt.Errorf("start failed: %w", err)
	}
	n.started = true
	logger.Info("节点已启动", "peer", n.local.PeerID().ShortString(), "ephemeral", n.local.Ephemeral())
	return nil
}

// Stop 停止节点
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.started {
		return ErrNotStarted
	}
	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	n.started = false
	if err := n.app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop failed: %w", err)
	}
	logger.Info("节点已停止")
	return nil
}

// Close 停止并关闭节点，关闭后不可再启动
func (n *Node) Close() error {
	var err error
	n.mu.Lock()
	started, closed := n.started, n.closed
	n.mu.Unlock()

	if closed {
		return nil
	}
	if started {
		err = multierr.Append(err, n.Stop(context.Background()))
	} else if n.store != nil {
		// 未启动时 OnStop 不会执行，存储需要单独关闭
		err = multierr.Append(err, n.store.Close())
	}

	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	return err
}

// ============================================================================
//                              访问器
// ============================================================================

// ID 返回本地 PeerID
func (n *Node) ID() types.PeerID { return n.local.PeerID() }

// Config 返回生效的配置
func (n *Node) Config() *config.Config { return n.config }

// Codec 返回线上编解码器
func (n *Node) Codec() *codec.Codec { return n.codec }

// Responder 返回路由应答者
func (n *Node) Responder() *route.Responder { return n.responder }

// Discoverer 返回路由发现发起方
func (n *Node) Discoverer() *route.Discoverer { return n.discoverer }

// Forwarder 返回游走转发器
func (n *Node) Forwarder() *walk.Forwarder { return n.forwarder }

// LeaseServer 返回租约服务端
func (n *Node) LeaseServer() *lease.Server { return n.leaseServer }

// Leases 返回租约客户端管理器
func (n *Node) Leases() *lease.Manager { return n.leases }

// RouteCache 返回路由缓存
func (n *Node) RouteCache() *routecache.Cache { return n.cache }

// Metrics 返回指标
func (n *Node) Metrics() *metrics.Metrics { return n.metrics }

// ============================================================================
//                              入站消息
// ============================================================================

// HandleRequest 解码并处理一条入站请求，返回需要回给对端的编码响应
//
// RouteQuery 和 LeaseRequest 有响应；SRDI 消息只做校验，调用方自行存储。
// 其他类型返回错误。
func (n *Node) HandleRequest(data []byte) ([]byte, any, error) {
	msg, err := n.codec.Decode(data)
	if err != nil {
		return nil, nil, err
	}

	switch m := msg.(type) {
	case *route.RouteQuery:
		resp, err := n.responder.Answer(m)
		if err != nil {
			return nil, m, err
		}
		out, err := n.codec.Encode(resp)
		return out, m, err
	case *lease.LeaseRequest:
		resp, err := n.leaseServer.Handle(m)
		if err != nil {
			return nil, m, err
		}
		out, err := n.codec.Encode(resp)
		return out, m, err
	case *srdi.Message:
		return nil, m, nil
	default:
		return nil, msg, fmt.Errorf("%w: %T is not a request", codec.ErrMalformed, msg)
	}
}

// HandleResponse 解码响应并投递给等待中的交换
func (n *Node) HandleResponse(id uuid.UUID, data []byte) error {
	msg, err := n.codec.Decode(data)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case *route.RouteResponse:
		return n.discoverer.HandleResponse(id, m)
	case *lease.LeaseResponse:
		c, ok := n.leases.Lookup(m.ServerPeer)
		if !ok {
			return fmt.Errorf("%w: no client for %s", lease.ErrServerMismatch, m.ServerPeer.ShortString())
		}
		return c.HandleResponse(id, m)
	default:
		return fmt.Errorf("%w: %T is not a response", codec.ErrMalformed, msg)
	}
}

// HandleEnvelope 解码游走信封并继续转发
func (n *Node) HandleEnvelope(ctx context.Context, from types.PeerID, data, payload []byte) (*walk.Result, error) {
	env, err := codec.DecodeAs[*walk.LimitedRangeEnvelope](n.codec, data)
	if err != nil {
		return nil, err
	}
	return n.forwarder.Propagate(ctx, env, from, payload)
}
