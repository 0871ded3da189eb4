// Package codec 实现连接核心消息的线上编码
//
// 外层帧只有两个字段：
//
//	field 1  type (varint)   消息类型码
//	field 2  body (bytes)    消息体
//
// 消息体按 protobuf 线格式编码（google.golang.org/protobuf/encoding/protowire），
// 未知字段被跳过，便于向前兼容。时长统一编码为 zigzag 毫秒，
// 因此负值可以被解码出来，再由消息自身的校验函数拒绝。
//
// 类型码与编解码函数的对应关系由 Registry 显式登记，没有进程级全局表：
//
//	reg := codec.NewRegistry()
//	codec.RegisterDefaults(reg)
//	c := codec.New(reg)
//
// Decode 在结构解码后立即调用消息的 Validate，校验失败的消息整条丢弃。
package codec
