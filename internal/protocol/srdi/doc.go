// Package srdi 定义 SRDI 复制载荷
//
// SRDI 消息把某个所有者节点发布的索引条目（主键 + 若干二级键/值）
// 推送给汇聚节点。Scope 决定接收方只持久化还是继续向其他汇聚节点复制。
//
// 本包只负责消息的构造与校验，索引的存储和复制由上层负责。
package srdi
