package interfaces

import (
	"time"

	"github.com/dep2p/go-overlay/pkg/types"
)

// LeaseRecord 租约记录（服务端视角）
type LeaseRecord struct {
	// Peer 客户端节点
	Peer types.PeerID `json:"peer"`

	// GrantedAt 授予时间
	GrantedAt time.Time `json:"granted_at"`

	// ExpiresAt 到期时间
	ExpiresAt time.Time `json:"expires_at"`

	// Credential 客户端凭证（不透明）
	Credential []byte `json:"credential,omitempty"`
}

// Expired 检查记录在 now 时刻是否已过期
func (r LeaseRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// LeaseStore 持久化租约存储
type LeaseStore interface {
	// Put 写入或覆盖记录
	Put(rec LeaseRecord) error

	// Get 读取记录，不存在时返回 ErrLeaseNotFound
	Get(peer types.PeerID) (LeaseRecord, error)

	// Delete 删除记录
	Delete(peer types.PeerID) error

	// List 返回全部未过期记录
	List(now time.Time) ([]LeaseRecord, error)

	// EvictExpired 删除 now 时刻已过期的记录
	EvictExpired(now time.Time) (int, error)

	// Close 关闭存储
	Close() error
}
