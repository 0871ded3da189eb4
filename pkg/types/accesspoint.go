package types

import (
	"fmt"
	"slices"
)

// ============================================================================
//                              AccessPoint - 接入点
// ============================================================================

// AccessPoint 节点接入点：节点标识 + 可达传输端点列表
//
// Peer 为空表示节点由所在 Route 隐含（仅允许出现在目的接入点上）。
// Endpoints 可以为空：节点已知，但当前没有可用传输。
type AccessPoint struct {
	// Peer 节点标识（可选）
	Peer PeerID

	// Endpoints 传输地址，按优先级排序
	Endpoints []string
}

// NewAccessPoint 创建接入点
func NewAccessPoint(peer PeerID, endpoints ...string) AccessPoint {
	return AccessPoint{Peer: peer, Endpoints: slices.Clone(endpoints)}
}

// Clone 深拷贝接入点
func (ap AccessPoint) Clone() AccessPoint {
	return AccessPoint{Peer: ap.Peer, Endpoints: slices.Clone(ap.Endpoints)}
}

// Equal 比较两个接入点
func (ap AccessPoint) Equal(other AccessPoint) bool {
	return ap.Peer == other.Peer && slices.Equal(ap.Endpoints, other.Endpoints)
}

// HasPeer 检查接入点是否携带节点标识
func (ap AccessPoint) HasPeer() bool {
	return !ap.Peer.IsEmpty()
}

// WithoutPeer 返回去掉节点标识的副本（编码时去冗余）
func (ap AccessPoint) WithoutPeer() AccessPoint {
	c := ap.Clone()
	c.Peer = EmptyPeerID
	return c
}

// Merge 合并另一个接入点的端点（保序去重），节点标识取非空者
func (ap AccessPoint) Merge(other AccessPoint) AccessPoint {
	out := ap.Clone()
	if out.Peer.IsEmpty() {
		out.Peer = other.Peer
	}
	for _, ep := range other.Endpoints {
		if !slices.Contains(out.Endpoints, ep) {
			out.Endpoints = append(out.Endpoints, ep)
		}
	}
	return out
}

// validateEndpoints 校验端点列表（不允许空字符串）
func (ap AccessPoint) validateEndpoints(field string) error {
	for i, ep := range ap.Endpoints {
		if ep == "" {
			return InvalidRange(fmt.Sprintf("%s.endpoints[%d]", field, i), ep)
		}
	}
	return nil
}

// String 返回接入点的字符串表示
func (ap AccessPoint) String() string {
	return fmt.Sprintf("%s%v", ap.Peer.ShortString(), ap.Endpoints)
}
