package srdi

import (
	"fmt"
	"strings"
	"time"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              Scope
// ============================================================================

// Scope 复制范围
type Scope uint8

const (
	// ScopeUnknown 未知范围（零值，非法）
	ScopeUnknown Scope = iota
	// ScopePersistOnly 接收方仅持久化
	ScopePersistOnly
	// ScopeReplicate 接收方持久化并继续复制
	ScopeReplicate
)

// String 返回范围名
func (s Scope) String() string {
	switch s {
	case ScopePersistOnly:
		return "persist_only"
	case ScopeReplicate:
		return "replicate"
	default:
		return "unknown"
	}
}

// IsValid 是否为已知取值
func (s Scope) IsValid() bool {
	return s == ScopePersistOnly || s == ScopeReplicate
}

// ParseScope 解析范围字符串
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "persist_only", "persist":
		return ScopePersistOnly, nil
	case "replicate":
		return ScopeReplicate, nil
	default:
		return ScopeUnknown, types.UnrecognizedValue("scope", s)
	}
}

// ============================================================================
//                              Message
// ============================================================================

// Entry 索引条目
type Entry struct {
	SecondaryKey string
	Value        string
	Expiration   time.Duration
}

// Message SRDI 消息
type Message struct {
	// Owner 条目所有者
	Owner types.PeerID

	// Scope 复制范围
	Scope Scope

	// PrimaryKey 主键（通常是通告类型）
	PrimaryKey string

	// Entries 条目列表
	Entries []Entry
}

// NewMessage 构造并校验 SRDI 消息
func NewMessage(owner types.PeerID, scope Scope, primaryKey string, entries ...Entry) (*Message, error) {
	m := &Message{
		Owner:      owner,
		Scope:      scope,
		PrimaryKey: primaryKey,
		Entries:    append([]Entry(nil), entries...),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate 校验消息
func (m *Message) Validate() error {
	if err := m.Owner.Validate("owner_peer"); err != nil {
		return err
	}
	if !m.Scope.IsValid() {
		return types.UnrecognizedValue("scope", uint8(m.Scope))
	}
	if m.PrimaryKey == "" {
		return types.MissingField("primary_key")
	}
	for i, e := range m.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if e.SecondaryKey == "" {
			return types.MissingField(field + ".secondary_key")
		}
		if e.Expiration <= 0 {
			return types.InvalidRange(field+".expiration_millis", e.Expiration.Milliseconds())
		}
		if err := types.CheckMillis(field+".expiration_millis", e.Expiration); err != nil {
			return err
		}
	}
	return nil
}

// Live 返回在 now 时刻仍有效的条目（有效期从 receivedAt 起算）
func (m *Message) Live(receivedAt, now time.Time) []Entry {
	var out []Entry
	for _, e := range m.Entries {
		if now.Before(receivedAt.Add(e.Expiration)) {
			out = append(out, e)
		}
	}
	return out
}

// Forwardable 是否应继续复制给其他汇聚节点
func (m *Message) Forwardable() bool {
	return m.Scope == ScopeReplicate
}
