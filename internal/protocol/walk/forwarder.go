package walk

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("protocol/walk")

// PeerSelector 邻居选择器
//
// 按方向挑选邻居，不得返回 exclude 中的节点；limit 为 0 表示不限制。
type PeerSelector interface {
	SelectPeers(dir types.Direction, exclude types.PeerSet, limit int) []types.PeerID
}

// Sender 信封发送器
type Sender interface {
	Send(ctx context.Context, peer types.PeerID, env *LimitedRangeEnvelope, payload []byte) error
}

// Result 一次转发的结果
type Result struct {
	// Envelope 实际发出的信封，终点时为 nil
	Envelope *LimitedRangeEnvelope

	// Sent 发送成功的邻居
	Sent []types.PeerID

	// Failed 发送失败的邻居
	Failed []types.PeerID
}

// Terminal 是否为终点（未转发）
func (r *Result) Terminal() bool {
	return r.Envelope == nil
}

// Forwarder 游走转发器
type Forwarder struct {
	self     types.PeerID
	selector PeerSelector
	sender   Sender
	config   *Config
	metrics  *metrics.Metrics
}

// NewForwarder 创建转发器
func NewForwarder(self types.PeerID, selector PeerSelector, sender Sender, m *metrics.Metrics, opts ...Option) *Forwarder {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Forwarder{self: self, selector: selector, sender: sender, config: cfg, metrics: m}
}

// Originate 以本节点为来源发起游走
func (f *Forwarder) Originate(ctx context.Context, dir types.Direction, serviceName string, params *string, payload []byte) (*Result, error) {
	env, err := Wrap(f.config.DefaultTTL, dir, f.self, serviceName, params)
	if err != nil {
		return nil, err
	}
	return f.fanOut(ctx, env, types.EmptyPeerID, payload)
}

// Propagate 转发一条入站信封
//
// from 为信封到达的上一跳。TTL 超过 MaxTTL 的信封整条丢弃；
// TTL 减到 0 时返回终点结果。所有发送都失败时返回合并后的错误。
func (f *Forwarder) Propagate(ctx context.Context, env *LimitedRangeEnvelope, from types.PeerID, payload []byte) (*Result, error) {
	if err := env.Validate(); err != nil {
		f.metrics.ObserveValidation(err)
		return nil, err
	}
	if f.config.MaxTTL > 0 && env.TTL > f.config.MaxTTL {
		err := types.InvalidRange("ttl", env.TTL)
		f.metrics.ObserveValidation(err)
		logger.Warn("丢弃 TTL 超限的信封", "ttl", env.TTL, "max", f.config.MaxTTL, "source", env.SourcePeer.ShortString())
		return nil, err
	}

	next := Forward(env)
	if next == nil {
		f.metrics.ObserveWalk(metrics.OutcomeTerminal)
		logger.Debug("游走到达终点", "source", env.SourcePeer.ShortString(), "service", env.SourceServiceName)
		return &Result{}, nil
	}
	return f.fanOut(ctx, next, from, payload)
}

// fanOut 并发发送到选出的邻居
func (f *Forwarder) fanOut(ctx context.Context, env *LimitedRangeEnvelope, from types.PeerID, payload []byte) (*Result, error) {
	if f.selector == nil {
		return nil, ErrNoSelector
	}
	if f.sender == nil {
		return nil, ErrNoSender
	}

	exclude := types.NewPeerSet(env.SourcePeer)
	if !from.IsEmpty() {
		exclude[from] = struct{}{}
	}
	if !f.self.IsEmpty() {
		exclude[f.self] = struct{}{}
	}

	peers := f.selector.SelectPeers(env.Direction, exclude, f.config.MaxFanout)
	res := &Result{Envelope: env}

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	if f.config.MaxFanout > 0 {
		g.SetLimit(f.config.MaxFanout)
	}
	for i, p := range peers {
		if exclude.Has(p) || (f.config.MaxFanout > 0 && i >= f.config.MaxFanout) {
			continue
		}
		g.Go(func() error {
			err := f.sender.Send(ctx, p, env, payload)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed = append(res.Failed, p)
				errs = multierr.Append(errs, err)
				f.metrics.ObserveWalk(metrics.OutcomeSendFailed)
				return nil
			}
			res.Sent = append(res.Sent, p)
			f.metrics.ObserveWalk(metrics.OutcomeForwarded)
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug("游走转发", "ttl", env.TTL, "dir", env.Direction, "sent", len(res.Sent), "failed", len(res.Failed))
	if len(res.Sent) == 0 && errs != nil {
		return res, errs
	}
	return res, nil
}
