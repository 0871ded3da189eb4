package storage

import (
	"errors"

	"github.com/dep2p/go-overlay/pkg/interfaces"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = interfaces.ErrLeaseNotFound

	// ErrClosed 存储已关闭
	ErrClosed = errors.New("storage: store closed")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("storage: invalid config")

	// ErrCorrupted 数据损坏
	ErrCorrupted = errors.New("storage: corrupted record")
)
