package walk

import "errors"

// 定义错误
var (
	// ErrNoSelector 未配置邻居选择器
	ErrNoSelector = errors.New("walk: no peer selector configured")

	// ErrNoSender 未配置发送器
	ErrNoSender = errors.New("walk: no sender configured")
)
