// Package overlay 提供 P2P 覆盖网络的连接核心
//
// 连接核心负责节点之间"如何找到彼此"：
//
//   - Route: 到目的节点的无环接入点链
//   - 路由发现: RouteQuery / RouteResponse，避开已知不可用的中间节点
//   - 有限范围游走: 带 TTL 的信封，按方向扇出，逐跳递减
//   - 汇聚点租约: 客户端向汇聚节点申请租约并获得推荐
//   - 校验与错误分类: 所有入站消息在交给协议逻辑前完成校验
//
// # 快速开始
//
//	node, err := overlay.New(
//	    overlay.WithPreset(overlay.PresetRendezvous),
//	    overlay.WithPeerID("urn:dep2p:peer:5Q2STWvBFn..."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	resp, err := node.LeaseServer().Handle(req)
//
// 传输层不在本库范围内：发送器（route.QuerySender、walk.Sender、
// lease.RequestSender）与邻居选择器（walk.PeerSelector）由调用方通过
// Option 注入，入站字节经 node.Codec() 解码后交给对应组件。
//
// # 文件组织
//
//	overlay.go   Node 与访问器
//	options.go   用户选项
//	presets.go   预设
//	fx.go        Fx 应用组装
//	errors.go    公共错误
package overlay
