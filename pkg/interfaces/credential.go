package interfaces

// CredentialProvider 凭证提供者
//
// 核心把凭证当作不透明字节，从不解析其内容。
// 凭证的签发与校验语义由成员/身份子系统决定。
type CredentialProvider interface {
	// Sign 为数据签发凭证
	Sign(data []byte) ([]byte, error)

	// Verify 校验凭证是否由本提供者为该数据签发
	Verify(data, credential []byte) bool
}
