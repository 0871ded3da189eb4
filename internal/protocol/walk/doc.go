// Package walk 实现有限范围游走
//
// 请求被包在 LimitedRangeEnvelope 中转发：每经过一跳 TTL 减一，
// 减到 0 时不再转发。信封的来源字段（source_peer、服务名、服务参数）
// 始终指向最初的发起方，中间转发者从不改写，回复因此可以直接返回发起方。
//
// 方向（Up/Down/Both）只是给邻居选择器的提示：
//
//	Up   朝向汇聚点 / 连接更多的节点
//	Down 朝向边缘 / 客户端节点
//	Both 双向扇出
//
// Wrap/Forward 是纯函数；Forwarder 在其上完成邻居选择与并发发送。
package walk
