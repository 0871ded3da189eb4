// Package types 定义覆盖网络连接核心的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是值类型：构造时校验，构造后不可变。
//
// # 文件组织
//
//   - ids.go         - PeerID, PeerSet
//   - enums.go       - Direction（有限范围游走方向）
//   - accesspoint.go - AccessPoint（节点标识 + 传输端点）
//   - route.go       - Route（无环接入点链）
//   - errors.go      - ValidationError 校验错误分类
//
// # 校验纪律
//
// 所有构造/校验函数返回 *ValidationError，按类别可用 errors.Is 判断：
//
//	route, err := types.NewRoute(dest, ap, hops)
//	if errors.Is(err, types.ErrCycleDetected) {
//	    // 同一节点出现两次
//	}
//
// 不存在"以默认值替代非法输入"的路径：非法数据在其进入系统的边界
// （构造或解码）处即被拒绝。
package types
