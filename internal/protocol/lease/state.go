package lease

import (
	"fmt"
	"time"
)

// ============================================================================
//                              状态
// ============================================================================

// State 客户端租约状态
type State uint8

const (
	// StateIdle 空闲，没有租约也没有等待中的请求
	StateIdle State = iota
	// StateRequestSent 已发出请求，等待响应
	StateRequestSent
	// StateLeased 持有租约
	StateLeased
	// StateDenied 请求了租约但未获授予，也没有可用推荐
	StateDenied
	// StateReferralOnly 未授予租约，但获得了推荐（或本就只请求推荐）
	StateReferralOnly
	// StateTimedOut 等待响应超时
	StateTimedOut
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestSent:
		return "request_sent"
	case StateLeased:
		return "leased"
	case StateDenied:
		return "denied"
	case StateReferralOnly:
		return "referral_only"
	case StateTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Status 状态机快照
type Status struct {
	// State 当前状态
	State State

	// ExpiresAt 当前租约到期时间，零值表示没有租约
	//
	// 续约期间（RequestSent）旧租约仍然有效，ExpiresAt 保留。
	ExpiresAt time.Time

	// WantsLease 最近一次请求是否请求了租约
	WantsLease bool
}

// HasLease 在 now 时刻是否持有有效租约
func (s Status) HasLease(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.Before(s.ExpiresAt)
}

// ============================================================================
//                              事件
// ============================================================================

// EventKind 事件类型
type EventKind uint8

const (
	// EventSend 发出请求
	EventSend EventKind = iota + 1
	// EventResponse 收到已校验的响应
	EventResponse
	// EventTimeout 等待超时
	EventTimeout
	// EventClock 时钟推进（检查租约到期）
	EventClock
)

// Event 状态机输入
type Event struct {
	Kind EventKind

	// At 事件发生时间
	At time.Time

	// WantsLease EventSend: 是否请求租约
	WantsLease bool

	// Offered EventResponse: 授予的租期
	Offered *time.Duration

	// UsableReferrals EventResponse: 可用推荐数
	UsableReferrals int
}

// Transition 计算状态转换
//
// 不允许的转换返回 ErrInvalidTransition，状态不变。
func Transition(s Status, ev Event) (Status, error) {
	switch ev.Kind {
	case EventSend:
		if s.State == StateRequestSent {
			return s, fmt.Errorf("%w: request already outstanding", ErrInvalidTransition)
		}
		s.State = StateRequestSent
		s.WantsLease = ev.WantsLease
		return s, nil

	case EventResponse:
		if s.State != StateRequestSent {
			return s, fmt.Errorf("%w: response in state %s", ErrInvalidTransition, s.State)
		}
		switch {
		case ev.Offered != nil && *ev.Offered > 0:
			s.State = StateLeased
			s.ExpiresAt = ev.At.Add(*ev.Offered)
		case !s.WantsLease || ev.UsableReferrals > 0:
			s.State = StateReferralOnly
		default:
			s.State = StateDenied
		}
		return s, nil

	case EventTimeout:
		if s.State != StateRequestSent {
			return s, fmt.Errorf("%w: timeout in state %s", ErrInvalidTransition, s.State)
		}
		s.State = StateTimedOut
		return s, nil

	case EventClock:
		if s.ExpiresAt.IsZero() || ev.At.Before(s.ExpiresAt) {
			return s, nil
		}
		s.ExpiresAt = time.Time{}
		if s.State == StateLeased {
			s.State = StateIdle
		}
		return s, nil

	default:
		return s, fmt.Errorf("%w: unknown event %d", ErrInvalidTransition, ev.Kind)
	}
}
