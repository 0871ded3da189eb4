package credential

import "errors"

var (
	// ErrInvalidKey 密钥长度不是 32 字节
	ErrInvalidKey = errors.New("credential: key must be 32 bytes")
)
