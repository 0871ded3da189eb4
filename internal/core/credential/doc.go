// Package credential 提供基于 BLAKE3 keyed hash 的凭证提供者
//
// 凭证是 32 字节的 MAC：BLAKE3-256(key, data)。协议层把它当作不透明字节，
// 只负责在消息上附带；签发与校验集中在这里。
//
// 未配置密钥时 Provider 不签发凭证（Sign 返回 nil），
// Verify 只接受空凭证。
package credential
