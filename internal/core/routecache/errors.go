package routecache

import "errors"

var (
	// ErrInvalidSize 缓存容量非法
	ErrInvalidSize = errors.New("routecache: size must be positive")
)
