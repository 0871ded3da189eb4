package types

import "strings"

// ============================================================================
//                              Direction - 传播方向
// ============================================================================

// Direction 有限范围游走的传播方向
//
// 方向只是对转发协作者的分类提示（挑选哪些邻居），核心只做校验。
type Direction uint8

const (
	// DirUnknown 未知方向（零值，非法）
	DirUnknown Direction = iota
	// DirUp 朝向汇聚点/连接更多的节点
	DirUp
	// DirDown 朝向边缘/客户端节点
	DirDown
	// DirBoth 双向扇出
	DirBoth
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirBoth:
		return "both"
	default:
		return "unknown"
	}
}

// IsValid 检查方向是否在已知取值集合内
func (d Direction) IsValid() bool {
	return d >= DirUp && d <= DirBoth
}

// Includes 检查 d 的扇出是否覆盖 other 方向
func (d Direction) Includes(other Direction) bool {
	return d == DirBoth || d == other
}

// ParseDirection 解析方向字符串
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "both":
		return DirBoth, nil
	default:
		return DirUnknown, UnrecognizedValue("direction", s)
	}
}

// DirectionFromCode 由线上编码解析方向
func DirectionFromCode(code uint64) (Direction, error) {
	d := Direction(code)
	if code > uint64(DirBoth) || !d.IsValid() {
		return DirUnknown, UnrecognizedValue("direction", code)
	}
	return d, nil
}
