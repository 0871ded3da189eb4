package route

import "errors"

// 定义错误
var (
	// ErrNoRoute 应答方没有给出目的路由
	ErrNoRoute = errors.New("route: no route to destination")

	// ErrQueryTimeout 等待应答超时
	ErrQueryTimeout = errors.New("route: query timeout")

	// ErrUnknownCorrelation 应答没有对应的等待中查询（迟到或重复）
	ErrUnknownCorrelation = errors.New("route: unknown correlation id")

	// ErrUnexpectedResponse 应答类型与查询不符
	ErrUnexpectedResponse = errors.New("route: unexpected response")

	// ErrRejectedRoute 应答中的路由不满足查询约束
	ErrRejectedRoute = errors.New("route: response route violates query constraints")

	// ErrNoSender 未配置查询发送器
	ErrNoSender = errors.New("route: no query sender configured")

	// ErrSendFailed 发送查询失败
	ErrSendFailed = errors.New("route: send query failed")
)
