package identity

import "errors"

var (
	// ErrInvalidPublicKey 公钥格式错误
	ErrInvalidPublicKey = errors.New("identity: invalid public key")
)
