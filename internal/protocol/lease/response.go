package lease

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              LeaseResponse
// ============================================================================

// ServerAdvertisement 服务端路由通告
//
// 出现时代号与有效期必须同时给出，缺一即 InconsistentFields。
type ServerAdvertisement struct {
	// Route 到服务端的路由
	Route types.Route

	// Generation 通告代号
	Generation uuid.NullUUID

	// Expiration 有效期（nil 表示缺失）
	Expiration *time.Duration
}

// Referral 推荐：到其他汇聚节点的路由 + 相对接收时间的有效期
type Referral struct {
	Route      types.Route
	Expiration time.Duration
}

// LeaseResponse 租约响应
type LeaseResponse struct {
	// ServerPeer 服务端节点（必填）
	ServerPeer types.PeerID

	// OfferedLease 授予的租期，nil 或 0 表示未授予
	OfferedLease *time.Duration

	// ServerAdvertisement 服务端通告（可选）
	ServerAdvertisement *ServerAdvertisement

	// Referrals 推荐列表，顺序即服务端给出的优先级
	Referrals []Referral

	// ServerCredential 服务端凭证（不透明）
	ServerCredential []byte
}

// BuildLeaseResponse 构造租约响应
//
// 以下情况拒绝构造：租期为负、任一推荐有效期 <= 0、
// 通告只给出代号或只给出有效期。
func BuildLeaseResponse(server types.PeerID, offered *time.Duration, adv *ServerAdvertisement, referrals []Referral, credential []byte) (*LeaseResponse, error) {
	resp := &LeaseResponse{
		ServerPeer:       server,
		ServerCredential: bytes.Clone(credential),
	}
	if offered != nil {
		d := *offered
		resp.OfferedLease = &d
	}
	if adv != nil {
		a := *adv
		if adv.Expiration != nil {
			e := *adv.Expiration
			a.Expiration = &e
		}
		resp.ServerAdvertisement = &a
	}
	if len(referrals) > 0 {
		resp.Referrals = append([]Referral(nil), referrals...)
	}
	if err := ValidateLeaseResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateLeaseResponse 校验租约响应
func ValidateLeaseResponse(resp *LeaseResponse) error {
	return resp.Validate()
}

// Validate 校验租约响应
func (r *LeaseResponse) Validate() error {
	if err := r.ServerPeer.Validate("server_peer"); err != nil {
		return err
	}
	if r.OfferedLease != nil && *r.OfferedLease < 0 {
		return types.InvalidRange("offered_lease_millis", r.OfferedLease.Milliseconds())
	}
	if r.OfferedLease != nil {
		if err := types.CheckMillis("offered_lease_millis", *r.OfferedLease); err != nil {
			return err
		}
	}
	if a := r.ServerAdvertisement; a != nil {
		if err := a.validate(); err != nil {
			return err
		}
	}
	for i, ref := range r.Referrals {
		field := fmt.Sprintf("referrals[%d]", i)
		if ref.Route.IsZero() {
			return types.MissingField(field + ".route")
		}
		if ref.Expiration <= 0 {
			return types.InvalidRange(field+".expiration_millis", ref.Expiration.Milliseconds())
		}
		if err := types.CheckMillis(field+".expiration_millis", ref.Expiration); err != nil {
			return err
		}
	}
	return nil
}

func (a *ServerAdvertisement) validate() error {
	switch {
	case !a.Generation.Valid && a.Expiration == nil:
		return types.InconsistentFields("server advertisement without generation and expiration")
	case !a.Generation.Valid:
		return types.InconsistentFields("server advertisement expiration without generation")
	case a.Expiration == nil:
		return types.InconsistentFields("server advertisement generation without expiration")
	case *a.Expiration <= 0:
		return types.InvalidRange("server_advertisement.expiration_millis", a.Expiration.Milliseconds())
	case a.Route.IsZero():
		return types.MissingField("server_advertisement.route")
	}
	return types.CheckMillis("server_advertisement.expiration_millis", *a.Expiration)
}

// GrantsLease 是否授予了正租期
func (r *LeaseResponse) GrantsLease() bool {
	return r.OfferedLease != nil && *r.OfferedLease > 0
}

// AdvertisementUnchanged 客户端是否可以跳过处理通告正文
//
// 通告代号等于客户端当前持有的代号时为 true；
// 服务端省略了通告且客户端已持有代号时同样为 true。
func AdvertisementUnchanged(resp *LeaseResponse, current uuid.NullUUID) bool {
	if resp.ServerAdvertisement == nil {
		return current.Valid
	}
	return current.Valid && resp.ServerAdvertisement.Generation == current
}

// SelectReferrals 选出可用的推荐路由
//
// 保持服务端给出的顺序，丢弃有环或空的路由以及在 now 时刻已过期
// （receivedAt + expiration <= now）的推荐，最多返回 maxCount 条。
func SelectReferrals(resp *LeaseResponse, maxCount int, receivedAt, now time.Time) []types.Route {
	refs := usableReferrals(resp, maxCount, receivedAt, now)
	if refs == nil {
		return nil
	}
	out := make([]types.Route, len(refs))
	for i, ref := range refs {
		out[i] = ref.Route
	}
	return out
}

func usableReferrals(resp *LeaseResponse, maxCount int, receivedAt, now time.Time) []Referral {
	if maxCount <= 0 {
		return nil
	}
	out := make([]Referral, 0, min(maxCount, len(resp.Referrals)))
	for _, ref := range resp.Referrals {
		if len(out) == maxCount {
			break
		}
		if ref.Route.IsZero() || ref.Route.HasLoop() {
			continue
		}
		if !now.Before(receivedAt.Add(ref.Expiration)) {
			continue
		}
		out = append(out, ref)
	}
	return out
}
