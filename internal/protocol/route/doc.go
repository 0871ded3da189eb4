// Package route 实现路由发现协议
//
// 路由发现由一对消息组成：
//
//	RouteQuery    {destination, source_route?, bad_hops}
//	RouteResponse {destination_route?, source_route?}
//
// 查询方把已知不可用的节点放进 bad_hops；应答方只会给出所有中间跳都
// 避开 bad_hops 且无环的路由，找不到这样的路由时整个省略
// destination_route，绝不替换成一条不满足约束的路由。
//
// 应答是纯函数（AnswerQuery），本地路由知识由 interfaces.RouteKnowledge
// 提供。Discoverer 在发起方一侧负责发送查询、等待应答、丢弃迟到应答，
// 并把接受的路由写入路由缓存。
package route
