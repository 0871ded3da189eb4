package lease

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              LeaseRequest
// ============================================================================

// Advertisement 客户端通告（不透明文档 + 有效期）
type Advertisement struct {
	// Document 通告文档
	Document []byte

	// Expiration 有效期
	Expiration time.Duration
}

// LeaseRequest 租约请求
//
// RequestedLease 为 nil 表示仅请求推荐（referral-only）。
type LeaseRequest struct {
	// ClientPeer 客户端节点（必填）
	ClientPeer types.PeerID

	// RequestedLease 请求的租期
	RequestedLease *time.Duration

	// KnownGeneration 客户端已持有的服务端通告代号
	KnownGeneration uuid.NullUUID

	// RequestedReferrals 请求的推荐数
	RequestedReferrals *uint32

	// ClientCredential 客户端凭证（不透明）
	ClientCredential []byte

	// ClientAdvertisement 客户端通告
	ClientAdvertisement *Advertisement
}

// RequestOption 请求构造选项
type RequestOption func(*LeaseRequest)

// WithLease 请求租期
func WithLease(d time.Duration) RequestOption {
	return func(r *LeaseRequest) {
		r.RequestedLease = &d
	}
}

// WithKnownGeneration 携带已持有的通告代号
func WithKnownGeneration(g uuid.NullUUID) RequestOption {
	return func(r *LeaseRequest) {
		r.KnownGeneration = g
	}
}

// WithReferralCount 请求推荐数
func WithReferralCount(n uint32) RequestOption {
	return func(r *LeaseRequest) {
		r.RequestedReferrals = &n
	}
}

// WithCredential 附带客户端凭证
func WithCredential(c []byte) RequestOption {
	return func(r *LeaseRequest) {
		r.ClientCredential = bytes.Clone(c)
	}
}

// WithAdvertisement 附带客户端通告
func WithAdvertisement(doc []byte, expiration time.Duration) RequestOption {
	return func(r *LeaseRequest) {
		r.ClientAdvertisement = &Advertisement{Document: bytes.Clone(doc), Expiration: expiration}
	}
}

// NewLeaseRequest 构造租约请求
func NewLeaseRequest(client types.PeerID, opts ...RequestOption) (*LeaseRequest, error) {
	r := &LeaseRequest{ClientPeer: client}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate 校验请求
func (r *LeaseRequest) Validate() error {
	if err := r.ClientPeer.Validate("client_peer"); err != nil {
		return err
	}
	if r.RequestedLease != nil && *r.RequestedLease <= 0 {
		return types.InvalidRange("requested_lease_millis", r.RequestedLease.Milliseconds())
	}
	if r.RequestedLease != nil {
		if err := types.CheckMillis("requested_lease_millis", *r.RequestedLease); err != nil {
			return err
		}
	}
	if a := r.ClientAdvertisement; a != nil {
		if len(a.Document) == 0 {
			return types.MissingField("client_advertisement.document")
		}
		if a.Expiration <= 0 {
			return types.InvalidRange("client_advertisement.expiration_millis", a.Expiration.Milliseconds())
		}
		if err := types.CheckMillis("client_advertisement.expiration_millis", a.Expiration); err != nil {
			return err
		}
	}
	return nil
}

// IsReferralOnly 是否仅请求推荐
func (r *LeaseRequest) IsReferralOnly() bool {
	return r.RequestedLease == nil
}
