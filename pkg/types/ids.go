// Package types 定义覆盖网络连接核心的基础类型
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是值类型：构造时校验，构造后不可变。
package types

import (
	"strings"
	"unicode"

	"github.com/mr-tron/base58"
	"lukechampine.com/blake3"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerIDPrefix 规范 PeerID 的 URN 前缀
const PeerIDPrefix = "urn:dep2p:peer:"

// PeerID 节点唯一标识符
//
// PeerID 是不透明值：两个 PeerID 相等当且仅当其规范字符串相等。
// 由公钥派生的 PeerID 形如 urn:dep2p:peer:<Base58(BLAKE3-256(pubkey))>，
// 但解析时接受任意不含空白字符的非空字符串。
type PeerID string

// EmptyPeerID 空节点 ID
const EmptyPeerID PeerID = ""

// String 返回 PeerID 的规范字符串表示
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回 PeerID 的短字符串表示（用于日志）
func (id PeerID) ShortString() string {
	s := strings.TrimPrefix(string(id), PeerIDPrefix)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty 检查 PeerID 是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// Validate 校验 PeerID 格式
func (id PeerID) Validate(field string) error {
	if id.IsEmpty() {
		return MissingField(field)
	}
	if strings.IndexFunc(string(id), unicode.IsSpace) >= 0 {
		return InvalidRange(field, string(id))
	}
	return nil
}

// ParsePeerID 从字符串解析 PeerID
//
// 示例：
//
//	id, err := ParsePeerID("urn:dep2p:peer:5Q2STWvBFn...")
func ParsePeerID(s string) (PeerID, error) {
	id := PeerID(s)
	if err := id.Validate("peer"); err != nil {
		return EmptyPeerID, err
	}
	return id, nil
}

// PeerIDFromPublicKey 由公钥派生规范 PeerID
func PeerIDFromPublicKey(pub []byte) (PeerID, error) {
	if len(pub) == 0 {
		return EmptyPeerID, MissingField("public_key")
	}
	sum := blake3.Sum256(pub)
	return PeerID(PeerIDPrefix + base58.Encode(sum[:])), nil
}

// PeerSet 节点集合
type PeerSet map[PeerID]struct{}

// NewPeerSet 由节点列表创建集合
func NewPeerSet(ids ...PeerID) PeerSet {
	s := make(PeerSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has 检查集合是否包含节点
func (s PeerSet) Has(id PeerID) bool {
	_, ok := s[id]
	return ok
}
