package codec

import "errors"

// 定义错误
var (
	// ErrMalformed 消息结构无法解析
	ErrMalformed = errors.New("codec: malformed message")

	// ErrMessageTooLarge 消息超过大小上限
	ErrMessageTooLarge = errors.New("codec: message too large")

	// ErrUnregistered 编码时消息类型未登记
	ErrUnregistered = errors.New("codec: message type not registered")

	// ErrDuplicateCode 重复登记类型码
	ErrDuplicateCode = errors.New("codec: duplicate type code")
)
