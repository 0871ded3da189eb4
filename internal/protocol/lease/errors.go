package lease

import "errors"

// 定义错误
var (
	// ErrUnexpectedResponse 当前没有等待中的请求，响应被丢弃
	ErrUnexpectedResponse = errors.New("lease: unexpected response")

	// ErrInvalidTransition 状态机不允许该转换
	ErrInvalidTransition = errors.New("lease: invalid state transition")

	// ErrRequestTimeout 等待响应超时
	ErrRequestTimeout = errors.New("lease: request timeout")

	// ErrUnknownCorrelation 响应没有对应的等待中请求
	ErrUnknownCorrelation = errors.New("lease: unknown correlation id")

	// ErrServerMismatch 响应声明的汇聚节点与请求目标不一致
	ErrServerMismatch = errors.New("lease: response from unexpected server")

	// ErrRateLimited 服务端限流
	ErrRateLimited = errors.New("lease: rate limited")

	// ErrNoSender 未配置请求发送器
	ErrNoSender = errors.New("lease: no request sender configured")

	// ErrSendFailed 发送请求失败
	ErrSendFailed = errors.New("lease: send request failed")
)
