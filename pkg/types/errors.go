// Package types 定义覆盖网络连接核心的基础类型
//
// 本文件定义校验错误分类。所有构造/校验/解码函数都返回 *ValidationError，
// 从不以默认值替代非法输入。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              错误分类哨兵
// ============================================================================

var (
	// ErrMissingField 必填字段缺失
	ErrMissingField = errors.New("missing field")

	// ErrCycleDetected 路由重复经过同一节点
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvalidRange 数值超出合法范围
	ErrInvalidRange = errors.New("invalid range")

	// ErrInconsistentFields 必须同时出现的字段只出现了一部分
	ErrInconsistentFields = errors.New("inconsistent fields")

	// ErrUnrecognizedValue 枚举字段取值未知
	ErrUnrecognizedValue = errors.New("unrecognized value")
)

// ErrorKind 校验错误类别
type ErrorKind int

const (
	// KindMissingField 字段缺失
	KindMissingField ErrorKind = iota + 1
	// KindCycleDetected 出现环路
	KindCycleDetected
	// KindInvalidRange 范围非法
	KindInvalidRange
	// KindInconsistentFields 字段不一致
	KindInconsistentFields
	// KindUnrecognizedValue 未知枚举值
	KindUnrecognizedValue
)

// String 返回类别名称（也用作指标标签）
func (k ErrorKind) String() string {
	switch k {
	case KindMissingField:
		return "missing_field"
	case KindCycleDetected:
		return "cycle_detected"
	case KindInvalidRange:
		return "invalid_range"
	case KindInconsistentFields:
		return "inconsistent_fields"
	case KindUnrecognizedValue:
		return "unrecognized_value"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMissingField:
		return ErrMissingField
	case KindCycleDetected:
		return ErrCycleDetected
	case KindInvalidRange:
		return ErrInvalidRange
	case KindInconsistentFields:
		return ErrInconsistentFields
	case KindUnrecognizedValue:
		return ErrUnrecognizedValue
	default:
		return nil
	}
}

// ============================================================================
//                              ValidationError
// ============================================================================

// ValidationError 校验错误
//
// 通过 errors.Is 与对应哨兵比较：
//
//	if errors.Is(err, types.ErrCycleDetected) { ... }
type ValidationError struct {
	Kind ErrorKind

	// Field 出错的字段名（CycleDetected/InconsistentFields 可能为空）
	Field string

	// Peer 重复出现的节点（仅 CycleDetected）
	Peer PeerID

	// Value 非法的原始值（InvalidRange/UnrecognizedValue）
	Value any

	// Detail 补充描述（InconsistentFields）
	Detail string
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("missing field %q", e.Field)
	case KindCycleDetected:
		return fmt.Sprintf("cycle detected: peer %s appears more than once", e.Peer)
	case KindInvalidRange:
		return fmt.Sprintf("invalid range for %q: %v", e.Field, e.Value)
	case KindInconsistentFields:
		return fmt.Sprintf("inconsistent fields: %s", e.Detail)
	case KindUnrecognizedValue:
		return fmt.Sprintf("unrecognized value for %q: %v", e.Field, e.Value)
	default:
		return "validation error"
	}
}

// Unwrap 返回类别哨兵
func (e *ValidationError) Unwrap() error {
	return e.Kind.sentinel()
}

// MissingField 创建字段缺失错误
func MissingField(field string) error {
	return &ValidationError{Kind: KindMissingField, Field: field}
}

// CycleDetected 创建环路错误
func CycleDetected(peer PeerID) error {
	return &ValidationError{Kind: KindCycleDetected, Peer: peer}
}

// InvalidRange 创建范围错误
func InvalidRange(field string, value any) error {
	return &ValidationError{Kind: KindInvalidRange, Field: field, Value: value}
}

// InconsistentFields 创建字段不一致错误
func InconsistentFields(detail string) error {
	return &ValidationError{Kind: KindInconsistentFields, Detail: detail}
}

// UnrecognizedValue 创建未知枚举值错误
func UnrecognizedValue(field string, raw any) error {
	return &ValidationError{Kind: KindUnrecognizedValue, Field: field, Value: raw}
}

// KindOf 返回错误的校验类别，非校验错误返回 0
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}
