// Package metrics 提供连接核心的监控指标
//
// 基于 prometheus/client_golang，指标统一使用 overlay 命名空间：
//
//	overlay_messages_total{type, outcome}        解码/编码消息数
//	overlay_validation_failures_total{kind}      校验失败数（按错误类别）
//	overlay_route_answers_total{outcome}         路由应答（answered/omitted）
//	overlay_walk_total{outcome}                  游走转发（forwarded/terminal/send_failed）
//	overlay_lease_total{outcome}                 租约结果（granted/referral_only/denied/rate_limited）
//	overlay_late_responses_total{kind}           超时后到达、被丢弃的响应
//
// 所有方法在 nil *Metrics 上调用都是安全的，组件可以不启用指标。
//
//	m, err := metrics.New(prometheus.NewRegistry())
//	m.ObserveDecode("lease_response", err)
package metrics
