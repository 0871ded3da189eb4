package exchange

import "errors"

var (
	// ErrUnknownCorrelation 关联 ID 不存在（已超时、已取消或从未登记）
	ErrUnknownCorrelation = errors.New("exchange: unknown correlation id")

	// ErrExpired 等待超时
	ErrExpired = errors.New("exchange: exchange expired")
)
