// Package routecache 提供路由表与租约缓存
//
// 路由按目的节点索引，存放在 ARC 缓存中（频繁查询的目的节点不会被
// 一次性扫描挤出），每个目的节点最多保留若干条候选路由。
// 租约到期时间存放在 LRU 缓存中。两者都按携带的过期时间淘汰。
//
// Cache 并发安全，实现 interfaces.RouteCache。
package routecache
