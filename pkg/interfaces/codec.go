package interfaces

// Codec 线上编解码器
//
// Decode 必须在结构解码之后、把消息交给协议逻辑之前调用消息的校验函数；
// 校验失败时整条消息被丢弃并返回错误，不会部分消费。
type Codec interface {
	// Encode 编码一条消息
	Encode(msg any) ([]byte, error)

	// Decode 解码并校验一条消息
	Decode(data []byte) (any, error)
}
