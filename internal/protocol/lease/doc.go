// Package lease 实现汇聚点租约协议
//
// 客户端定期向汇聚节点发送 LeaseRequest 以保持可达，汇聚节点以
// LeaseResponse 应答：可能授予一段租期，并附带到其他汇聚节点的推荐路由。
// 每个推荐带有相对接收时间的有效期；服务端通告带有 UUID 代号，
// 客户端已持有当前代号时服务端可以省略通告正文。
//
// # 客户端状态机
//
//	Idle ──BuildRequest──► RequestSent ──┬─ 授予租期 d>0 ──► Leased(t+d)
//	                                    ├─ 仅推荐      ──► ReferralOnly
//	                                    ├─ 拒绝        ──► Denied
//	                                    └─ 超时        ──► TimedOut
//	Leased(t) ──时钟到达 t──► Idle
//
// 状态转换由纯函数 Transition 定义；Session 在其上维护当前状态、
// 当前通告代号和可用推荐。租约不会隐式续期，调用方需在到期前
// 重新发起请求（NeedsRenewal 给出提示）。
//
// # 服务端
//
// Server 负责授予策略：限流、租期上限、客户端数上限、推荐选择、
// 通告代号比较与租约持久化。
package lease
