package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Route - 路由
// ============================================================================

// Route 到目的节点的有序接入点链
//
// 不变量：
//   - {目的节点} ∪ 各跳 中同一节点最多出现一次（无环）
//   - 每一跳都携带节点标识
//   - 目的接入点的节点标识（若有）等于目的节点
//
// Route 只能通过 NewRoute / NormalizeRoute 构造，构造后不可变。
// 规范形式下目的接入点总是填充目的节点标识，编码时再去掉冗余。
type Route struct {
	dest   PeerID
	destAP AccessPoint
	hops   []AccessPoint
}

// NewRoute 构造并校验路由
//
// 校验失败返回 *ValidationError：
//   - MissingField: 目的节点或某跳节点标识缺失
//   - InconsistentFields: 目的接入点标识与目的节点不一致
//   - CycleDetected: 同一节点出现两次
func NewRoute(dest PeerID, destAP AccessPoint, hops []AccessPoint) (Route, error) {
	if err := dest.Validate("destination_peer"); err != nil {
		return Route{}, err
	}
	if destAP.HasPeer() && destAP.Peer != dest {
		return Route{}, InconsistentFields(fmt.Sprintf(
			"destination access point peer %s does not match destination %s", destAP.Peer, dest))
	}
	if err := destAP.validateEndpoints("destination_access_point"); err != nil {
		return Route{}, err
	}

	seen := NewPeerSet(dest)
	out := make([]AccessPoint, 0, len(hops))
	for i, h := range hops {
		field := fmt.Sprintf("hops[%d]", i)
		if !h.HasPeer() {
			return Route{}, MissingField(field + ".peer")
		}
		if err := h.Peer.Validate(field + ".peer"); err != nil {
			return Route{}, err
		}
		if seen.Has(h.Peer) {
			return Route{}, CycleDetected(h.Peer)
		}
		if err := h.validateEndpoints(field); err != nil {
			return Route{}, err
		}
		seen[h.Peer] = struct{}{}
		out = append(out, h.Clone())
	}

	ap := destAP.Clone()
	ap.Peer = dest
	return Route{dest: dest, destAP: ap, hops: out}, nil
}

// NormalizeRoute 规整后构造路由
//
// 规整规则（保留全部端点信息）：
//   - 相邻两跳指向同一节点时合并为一跳
//   - 末跳指向目的节点时并入目的接入点
//   - 目的接入点缺省的节点标识由目的节点补齐
//
// 非相邻的重复节点仍然是环路，返回 CycleDetected。
func NormalizeRoute(dest PeerID, destAP AccessPoint, hops []AccessPoint) (Route, error) {
	merged := make([]AccessPoint, 0, len(hops))
	for _, h := range hops {
		if n := len(merged); n > 0 && h.HasPeer() && merged[n-1].Peer == h.Peer {
			merged[n-1] = merged[n-1].Merge(h)
			continue
		}
		merged = append(merged, h.Clone())
	}

	ap := destAP.Clone()
	for n := len(merged); n > 0 && merged[n-1].Peer == dest; n = len(merged) {
		ap = ap.Merge(merged[n-1])
		merged = merged[:n-1]
	}
	if !ap.HasPeer() {
		ap.Peer = dest
	}
	return NewRoute(dest, ap, merged)
}

// HasLoop 检查 {dest} ∪ hops 中是否有节点出现两次
//
// 用于尚未构造成 Route 的候选数据。无节点标识的跳不参与比较。
func HasLoop(dest PeerID, hops []AccessPoint) bool {
	seen := NewPeerSet()
	if !dest.IsEmpty() {
		seen[dest] = struct{}{}
	}
	for _, h := range hops {
		if !h.HasPeer() {
			continue
		}
		if seen.Has(h.Peer) {
			return true
		}
		seen[h.Peer] = struct{}{}
	}
	return false
}

// HasLoop 检查路由是否有环
func (r Route) HasLoop() bool {
	return HasLoop(r.dest, r.hops)
}

// IsZero 检查是否为零值路由
func (r Route) IsZero() bool {
	return r.dest.IsEmpty()
}

// Destination 返回目的节点
func (r Route) Destination() PeerID {
	return r.dest
}

// DestinationAccessPoint 返回目的接入点（规范形式，含节点标识）
func (r Route) DestinationAccessPoint() AccessPoint {
	return r.destAP.Clone()
}

// WireAccessPoint 返回去冗余后的目的接入点（用于编码）
func (r Route) WireAccessPoint() AccessPoint {
	return r.destAP.WithoutPeer()
}

// Hops 返回各跳的副本
func (r Route) Hops() []AccessPoint {
	out := make([]AccessPoint, len(r.hops))
	for i, h := range r.hops {
		out[i] = h.Clone()
	}
	return out
}

// HopCount 返回跳数
func (r Route) HopCount() int {
	return len(r.hops)
}

// FirstHop 返回第一跳节点；直连路由返回目的节点
func (r Route) FirstHop() PeerID {
	if len(r.hops) == 0 {
		return r.dest
	}
	return r.hops[0].Peer
}

// Contains 检查节点是否出现在路由上（含目的节点）
func (r Route) Contains(peer PeerID) bool {
	if r.dest == peer {
		return true
	}
	for _, h := range r.hops {
		if h.Peer == peer {
			return true
		}
	}
	return false
}

// HopsAvoid 检查所有中间跳都不在给定集合内
func (r Route) HopsAvoid(bad PeerSet) bool {
	for _, h := range r.hops {
		if bad.Has(h.Peer) {
			return false
		}
	}
	return true
}

// Equal 逐字段比较两条路由
func (r Route) Equal(other Route) bool {
	if r.dest != other.dest || !r.destAP.Equal(other.destAP) || len(r.hops) != len(other.hops) {
		return false
	}
	for i := range r.hops {
		if !r.hops[i].Equal(other.hops[i]) {
			return false
		}
	}
	return true
}

// String 返回路由的字符串表示
func (r Route) String() string {
	if r.IsZero() {
		return "<empty route>"
	}
	parts := make([]string, 0, len(r.hops)+1)
	for _, h := range r.hops {
		parts = append(parts, h.Peer.ShortString())
	}
	parts = append(parts, r.dest.ShortString())
	return strings.Join(parts, " -> ")
}
