package lease

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("protocol/lease")

// Outcome 处理一条响应的结果
type Outcome struct {
	// Status 处理后的状态
	Status Status

	// Referrals 可用推荐（已过滤）
	Referrals []types.Route

	// AdvertisementChanged 服务端通告是否为新代号
	AdvertisementChanged bool
}

// Session 客户端租约会话
//
// 一个 Session 对应一个汇聚节点。并发安全。
type Session struct {
	client     types.PeerID
	config     *Config
	clock      clock.Clock
	credential interfaces.CredentialProvider
	cache      interfaces.RouteCache
	metrics    *metrics.Metrics

	mu         sync.Mutex
	status     Status
	sentAt     time.Time
	generation uuid.NullUUID
	referrals  []types.Route
}

// SessionOption 会话选项
type SessionOption func(*Session)

// WithCredentialProvider 使用凭证提供者为请求签发凭证
func WithCredentialProvider(p interfaces.CredentialProvider) SessionOption {
	return func(s *Session) {
		s.credential = p
	}
}

// WithRouteCache 把租约与推荐写入路由缓存
func WithRouteCache(c interfaces.RouteCache) SessionOption {
	return func(s *Session) {
		s.cache = c
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// NewSession 创建会话，clk 为 nil 时使用系统时钟
func NewSession(client types.PeerID, cfg *Config, clk clock.Clock, opts ...SessionOption) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if clk == nil {
		clk = clock.New()
	}
	s := &Session{client: client, config: cfg, clock: clk}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status 返回当前状态快照
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Generation 返回当前持有的服务端通告代号
func (s *Session) Generation() uuid.NullUUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Referrals 返回最近一次响应中的可用推荐
func (s *Session) Referrals() []types.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Route(nil), s.referrals...)
}

// BuildRequest 构造请求并进入 RequestSent
//
// wantsLease 为 false 时构造仅推荐请求。
func (s *Session) BuildRequest(wantsLease bool) (*LeaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := []RequestOption{
		WithKnownGeneration(s.generation),
		WithReferralCount(s.config.RequestedReferrals),
	}
	if wantsLease {
		opts = append(opts, WithLease(s.config.RequestedLease))
	}
	if s.credential != nil {
		cred, err := s.credential.Sign([]byte(s.client))
		if err != nil {
			return nil, err
		}
		if len(cred) > 0 {
			opts = append(opts, WithCredential(cred))
		}
	}
	req, err := NewLeaseRequest(s.client, opts...)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	next, err := Transition(s.status, Event{Kind: EventSend, At: now, WantsLease: wantsLease})
	if err != nil {
		return nil, err
	}
	s.status = next
	s.sentAt = now
	return req, nil
}

// HandleResponse 处理已解码的响应
//
// 不在 RequestSent 状态时返回 ErrUnexpectedResponse，状态不变；
// 响应校验失败时整条丢弃，状态同样不变。
func (s *Session) HandleResponse(resp *LeaseResponse, receivedAt time.Time) (*Outcome, error) {
	if resp == nil {
		return nil, ErrUnexpectedResponse
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State != StateRequestSent {
		logger.Debug("丢弃非预期的租约响应", "state", s.status.State, "server", resp.ServerPeer.ShortString())
		return nil, ErrUnexpectedResponse
	}
	if err := ValidateLeaseResponse(resp); err != nil {
		s.metrics.ObserveValidation(err)
		logger.Warn("拒绝非法租约响应", "server", resp.ServerPeer.ShortString(), "error", err)
		return nil, err
	}

	limit := int(s.config.RequestedReferrals)
	usable := usableReferrals(resp, limit, receivedAt, receivedAt)
	refs := make([]types.Route, len(usable))
	for i, ref := range usable {
		refs[i] = ref.Route
	}

	next, err := Transition(s.status, Event{
		Kind:            EventResponse,
		At:              receivedAt,
		Offered:         resp.OfferedLease,
		UsableReferrals: len(refs),
	})
	if err != nil {
		return nil, err
	}
	s.status = next
	s.referrals = refs

	changed := false
	if adv := resp.ServerAdvertisement; adv != nil && !AdvertisementUnchanged(resp, s.generation) {
		s.generation = adv.Generation
		changed = true
	}

	if s.cache != nil {
		if next.State == StateLeased {
			s.cache.StoreLease(resp.ServerPeer, next.ExpiresAt)
		}
		for _, ref := range usable {
			s.cache.StoreRoute(ref.Route, receivedAt, receivedAt.Add(ref.Expiration))
		}
		if adv := resp.ServerAdvertisement; adv != nil {
			s.cache.StoreRoute(adv.Route, receivedAt, receivedAt.Add(*adv.Expiration))
		}
	}

	logger.Debug("处理租约响应",
		"server", resp.ServerPeer.ShortString(),
		"state", next.State,
		"referrals", len(refs),
		"advChanged", changed)

	return &Outcome{Status: next, Referrals: refs, AdvertisementChanged: changed}, nil
}

// abandon 放弃等待中的请求（发送失败或调用方取消），按超时处理
func (s *Session) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next, err := Transition(s.status, Event{Kind: EventTimeout, At: s.clock.Now()}); err == nil {
		s.status = next
	}
}

// CheckTimeout 检查等待是否超时，超时则进入 TimedOut
func (s *Session) CheckTimeout(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State != StateRequestSent || now.Before(s.sentAt.Add(s.config.RequestTimeout)) {
		return false
	}
	next, err := Transition(s.status, Event{Kind: EventTimeout, At: now})
	if err != nil {
		return false
	}
	s.status = next
	return true
}

// Tick 推进时钟，租约到期时 Leased 回到 Idle
func (s *Session) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, _ := Transition(s.status, Event{Kind: EventClock, At: now})
	changed := next.State != s.status.State
	s.status = next
	return changed
}

// NeedsRenewal 是否应当发起续约
func (s *Session) NeedsRenewal(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status.State {
	case StateLeased:
		return !now.Before(s.status.ExpiresAt.Add(-s.config.RenewBefore))
	case StateRequestSent:
		return false
	default:
		return true
	}
}
