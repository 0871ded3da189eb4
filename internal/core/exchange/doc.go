// Package exchange 提供请求/响应关联跟踪
//
// 每个发出的查询或租约请求登记一个关联 ID（UUID）和超时时间。
// 响应到达时按关联 ID 投递给等待方；已超时、已取消或未知的关联 ID
// 对应的迟到响应被直接丢弃，不会影响任何状态。
//
//	id, ch := tracker.Register("route", 15*time.Second)
//	// 发送请求 ...
//	select {
//	case msg := <-ch:
//	case <-ctx.Done():
//	    tracker.Cancel(id)
//	}
package exchange
