// Package storage 提供租约持久化存储
//
// 汇聚节点授予的租约写入 BadgerDB，节点重启后未过期的租约仍然有效。
// 每条记录以 BadgerDB 的 TTL 写入，到期后由引擎自动回收；
// 读取时再按注入的时钟过滤一次，保证测试中的模拟时间同样生效。
//
// # 键空间
//
//	前缀 | 内容
//	-----|------------------------
//	l/   | 租约记录（JSON）
//
// # 使用示例
//
//	store, err := storage.Open(storage.Config{Path: "./data/leases.db"}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.Put(interfaces.LeaseRecord{Peer: id, GrantedAt: now, ExpiresAt: now.Add(10 * time.Minute)})
//
// # 线程安全
//
// 所有公开方法都是线程安全的。
package storage
