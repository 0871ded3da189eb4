// Package interfaces 定义连接核心消费的协作者接口
//
// 核心本身不做 I/O，也不持有长期状态；以下协作者由部署方提供：
//
//   - credential.go - 凭证提供者（签名/校验不透明凭证）
//   - codec.go      - 线上编解码器（解码后立即校验）
//   - routing.go    - 路由表 / 租约缓存（按节点索引、按过期时间淘汰）
//   - storage.go    - 持久化租约存储
//
// 所有实现都必须是并发安全的：核心从不假设独占访问，
// 对协作者的每次调用都视为一次原子的"查询后决策"。
package interfaces
