package exchange

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/exchange")

// pending 一个等待中的交换
type pending struct {
	kind     string
	deadline time.Time
	ch       chan any
}

// Tracker 关联 ID 跟踪器
//
// 并发安全。每个关联 ID 最多投递一次响应。
type Tracker struct {
	clock   clock.Clock
	metrics *metrics.Metrics

	mu      sync.Mutex
	pending map[uuid.UUID]*pending
}

// NewTracker 创建跟踪器，clk 为 nil 时使用系统时钟
func NewTracker(clk clock.Clock, m *metrics.Metrics) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{
		clock:   clk,
		metrics: m,
		pending: make(map[uuid.UUID]*pending),
	}
}

// Register 登记一个交换
//
// 返回的 channel 容量为 1，Resolve 投递后即被关闭。
func (t *Tracker) Register(kind string, timeout time.Duration) (uuid.UUID, <-chan any) {
	id := uuid.New()
	p := &pending{
		kind:     kind,
		deadline: t.clock.Now().Add(timeout),
		ch:       make(chan any, 1),
	}

	t.mu.Lock()
	t.pending[id] = p
	t.mu.Unlock()

	return id, p.ch
}

// Resolve 投递响应
//
// 关联 ID 未登记或已过期时返回 false，响应被丢弃。
// kind 与登记时不一致的响应同样被丢弃，原交换保持等待。
func (t *Tracker) Resolve(id uuid.UUID, kind string, msg any) bool {
	now := t.clock.Now()

	t.mu.Lock()
	p, ok := t.pending[id]
	if ok && p.kind != kind {
		t.mu.Unlock()
		logger.Debug("丢弃类型不符的响应", "id", id, "want", p.kind, "got", kind)
		return false
	}
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if !ok {
		logger.Debug("丢弃迟到响应", "id", id)
		t.metrics.ObserveLateResponse("unknown")
		return false
	}
	if !now.Before(p.deadline) {
		close(p.ch)
		logger.Debug("丢弃超时响应", "id", id, "kind", p.kind)
		t.metrics.ObserveLateResponse(p.kind)
		return false
	}

	p.ch <- msg
	close(p.ch)
	return true
}

// Cancel 取消等待，之后到达的响应被丢弃
func (t *Tracker) Cancel(id uuid.UUID) {
	t.mu.Lock()
	p, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if ok {
		close(p.ch)
	}
}

// Deadline 返回交换的截止时间
func (t *Tracker) Deadline(id uuid.UUID) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return time.Time{}, false
	}
	return p.deadline, true
}

// Sweep 清理已超时的交换，返回清理数量
func (t *Tracker) Sweep() int {
	now := t.clock.Now()

	t.mu.Lock()
	var expired []*pending
	for id, p := range t.pending {
		if !now.Before(p.deadline) {
			expired = append(expired, p)
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	for _, p := range expired {
		close(p.ch)
	}
	return len(expired)
}

// Pending 返回等待中的交换数
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Clock 返回跟踪器使用的时钟
func (t *Tracker) Clock() clock.Clock {
	return t.clock
}
