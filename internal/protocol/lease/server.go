package lease

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Server 汇聚节点租约服务端
type Server struct {
	self       types.Route
	config     *Config
	clock      clock.Clock
	limiter    *rate.Limiter
	referrals  ReferralSource
	store      interfaces.LeaseStore
	credential interfaces.CredentialProvider
	metrics    *metrics.Metrics

	mu         sync.Mutex
	generation uuid.UUID

	// grantMu 串行化客户端上限检查与租约写入
	grantMu sync.Mutex
}

// ServerOption 服务端选项
type ServerOption func(*Server)

// WithReferralSource 设置推荐来源
func WithReferralSource(src ReferralSource) ServerOption {
	return func(s *Server) {
		s.referrals = src
	}
}

// WithLeaseStore 设置租约存储
func WithLeaseStore(store interfaces.LeaseStore) ServerOption {
	return func(s *Server) {
		s.store = store
	}
}

// WithServerCredential 设置服务端凭证提供者
func WithServerCredential(p interfaces.CredentialProvider) ServerOption {
	return func(s *Server) {
		s.credential = p
	}
}

// WithServerMetrics 设置指标
func WithServerMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer 创建服务端
//
// self 为到本服务端的路由，作为服务端通告的内容。
func NewServer(self types.Route, cfg *Config, clk clock.Clock, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if clk == nil {
		clk = clock.New()
	}
	s := &Server{
		self:       self,
		config:     cfg,
		clock:      clk,
		generation: uuid.New(),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generation 返回当前通告代号
func (s *Server) Generation() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// UpdateSelf 更新本服务端路由并生成新的通告代号
func (s *Server) UpdateSelf(self types.Route) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.self = self
	s.generation = uuid.New()
	logger.Info("服务端通告已更新", "generation", s.generation)
	return s.generation
}

// Handle 处理一条已解码的租约请求
func (s *Server) Handle(req *LeaseRequest) (*LeaseResponse, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveValidation(err)
		return nil, err
	}

	now := s.clock.Now()
	if s.limiter != nil && !s.limiter.AllowN(now, 1) {
		s.metrics.ObserveLease(metrics.OutcomeRateLimited)
		logger.Warn("租约请求被限流", "client", req.ClientPeer.ShortString())
		return nil, ErrRateLimited
	}

	s.mu.Lock()
	self, gen := s.self, s.generation
	s.mu.Unlock()

	offered, err := s.grant(req, now)
	if err != nil {
		return nil, err
	}

	var adv *ServerAdvertisement
	if !self.IsZero() && !(req.KnownGeneration.Valid && req.KnownGeneration.UUID == gen) {
		exp := s.config.AdvertisementTTL
		adv = &ServerAdvertisement{
			Route:      self,
			Generation: uuid.NullUUID{UUID: gen, Valid: true},
			Expiration: &exp,
		}
	}

	var cred []byte
	if s.credential != nil {
		cred, err = s.credential.Sign([]byte(self.Destination() + "|" + req.ClientPeer))
		if err != nil {
			return nil, err
		}
	}

	resp, err := BuildLeaseResponse(self.Destination(), offered, adv, s.selectReferrals(req), cred)
	if err != nil {
		return nil, err
	}

	outcome := metrics.OutcomeGranted
	switch {
	case resp.GrantsLease():
	case req.IsReferralOnly() || len(resp.Referrals) > 0:
		outcome = metrics.OutcomeReferralOnly
	default:
		outcome = metrics.OutcomeDenied
	}
	s.metrics.ObserveLease(outcome)
	logger.Debug("处理租约请求", "client", req.ClientPeer.ShortString(), "outcome", outcome, "referrals", len(resp.Referrals))
	return resp, nil
}

// grant 决定授予的租期，并记录到存储
//
// 仅推荐请求不授予租期；客户端数达到上限时新客户端获得 0 租期。
func (s *Server) grant(req *LeaseRequest, now time.Time) (*time.Duration, error) {
	if req.IsReferralOnly() {
		return nil, nil
	}

	d := min(*req.RequestedLease, s.config.MaxLease)
	if s.store == nil {
		return &d, nil
	}

	s.grantMu.Lock()
	defer s.grantMu.Unlock()

	if s.config.MaxClients > 0 {
		full, err := s.full(req.ClientPeer, now)
		if err != nil {
			return nil, err
		}
		if full {
			zero := time.Duration(0)
			logger.Debug("客户端数已达上限，不授予租约", "client", req.ClientPeer.ShortString())
			return &zero, nil
		}
	}

	rec := interfaces.LeaseRecord{
		Peer:       req.ClientPeer,
		GrantedAt:  now,
		ExpiresAt:  now.Add(d),
		Credential: req.ClientCredential,
	}
	if err := s.store.Put(rec); err != nil {
		return nil, err
	}
	return &d, nil
}

// full 检查是否已达客户端上限（已有租约的客户端续约不受限）
func (s *Server) full(client types.PeerID, now time.Time) (bool, error) {
	if _, err := s.store.Get(client); err == nil {
		return false, nil
	} else if !errors.Is(err, interfaces.ErrLeaseNotFound) {
		return false, err
	}
	active, err := s.store.List(now)
	if err != nil {
		return false, err
	}
	return len(active) >= s.config.MaxClients, nil
}

// selectReferrals 为客户端挑选推荐
func (s *Server) selectReferrals(req *LeaseRequest) []Referral {
	if s.referrals == nil {
		return nil
	}
	limit := s.config.MaxReferrals
	if req.RequestedReferrals != nil {
		limit = min(limit, int(*req.RequestedReferrals))
	}
	if limit <= 0 {
		return nil
	}

	routes := s.referrals.Referrals(req.ClientPeer, limit)
	out := make([]Referral, 0, len(routes))
	for _, r := range routes {
		if len(out) == limit {
			break
		}
		if r.IsZero() || r.Contains(req.ClientPeer) {
			continue
		}
		out = append(out, Referral{Route: r, Expiration: s.config.ReferralTTL})
	}
	return out
}

// ActiveLeases 返回当前有效的租约
func (s *Server) ActiveLeases() ([]interfaces.LeaseRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(s.clock.Now())
}

// Revoke 撤销客户端租约
func (s *Server) Revoke(client types.PeerID) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(client)
}
