package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-overlay/pkg/types"
)

const namespace = "overlay"

// 标签取值
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"

	OutcomeAnswered = "answered"
	OutcomeOmitted  = "omitted"

	OutcomeForwarded  = "forwarded"
	OutcomeTerminal   = "terminal"
	OutcomeSendFailed = "send_failed"

	OutcomeGranted      = "granted"
	OutcomeReferralOnly = "referral_only"
	OutcomeDenied       = "denied"
	OutcomeRateLimited  = "rate_limited"
)

// Metrics 连接核心指标集合
type Metrics struct {
	messages   *prometheus.CounterVec
	validation *prometheus.CounterVec
	routes     *prometheus.CounterVec
	walk       *prometheus.CounterVec
	leases     *prometheus.CounterVec
	late       *prometheus.CounterVec
}

// New 创建指标并注册到 reg
//
// 同一 Registerer 上重复注册时复用已注册的收集器。
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_total",
			Help: "Total messages processed by the codec.",
		}, []string{"type", "outcome"}),
		validation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "validation_failures_total",
			Help: "Total validation failures by error kind.",
		}, []string{"kind"}),
		routes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "route_answers_total",
			Help: "Total route queries answered, by outcome.",
		}, []string{"outcome"}),
		walk: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "walk_total",
			Help: "Total limited-range walk forwarding decisions.",
		}, []string{"outcome"}),
		leases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lease_total",
			Help: "Total lease requests handled, by outcome.",
		}, []string{"outcome"}),
		late: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "late_responses_total",
			Help: "Total responses discarded because their exchange was no longer pending.",
		}, []string{"kind"}),
	}

	cs := []**prometheus.CounterVec{&m.messages, &m.validation, &m.routes, &m.walk, &m.leases, &m.late}
	for _, c := range cs {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}

// ObserveDecode 记录一次解码结果
func (m *Metrics) ObserveDecode(msgType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.messages.WithLabelValues(msgType, OutcomeInvalid).Inc()
		m.ObserveValidation(err)
		return
	}
	m.messages.WithLabelValues(msgType, OutcomeOK).Inc()
}

// ObserveValidation 记录校验失败（非校验错误忽略）
func (m *Metrics) ObserveValidation(err error) {
	if m == nil {
		return
	}
	if kind := types.KindOf(err); kind != 0 {
		m.validation.WithLabelValues(kind.String()).Inc()
	}
}

// ObserveRouteAnswer 记录路由应答
func (m *Metrics) ObserveRouteAnswer(answered bool) {
	if m == nil {
		return
	}
	if answered {
		m.routes.WithLabelValues(OutcomeAnswered).Inc()
		return
	}
	m.routes.WithLabelValues(OutcomeOmitted).Inc()
}

// ObserveWalk 记录游走转发结果
func (m *Metrics) ObserveWalk(outcome string) {
	if m == nil {
		return
	}
	m.walk.WithLabelValues(outcome).Inc()
}

// ObserveLease 记录租约处理结果
func (m *Metrics) ObserveLease(outcome string) {
	if m == nil {
		return
	}
	m.leases.WithLabelValues(outcome).Inc()
}

// ObserveLateResponse 记录被丢弃的迟到响应
func (m *Metrics) ObserveLateResponse(kind string) {
	if m == nil {
		return
	}
	m.late.WithLabelValues(kind).Inc()
}
