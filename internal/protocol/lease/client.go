package lease

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/pkg/types"
)

// exchangeKind 交换类型标签
const exchangeKind = "lease"

// RequestSender 租约请求发送器
type RequestSender interface {
	SendLeaseRequest(ctx context.Context, id uuid.UUID, server types.PeerID, req *LeaseRequest) error
}

// Client 租约客户端
//
// 在 Session 之上完成一次完整交换：构造请求、登记关联 ID、发送、
// 等待响应或超时。迟到的响应由 HandleResponse 丢弃。
type Client struct {
	server  types.PeerID
	session *Session
	tracker *exchange.Tracker
	sender  RequestSender

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewClient 创建租约客户端
func NewClient(server types.PeerID, session *Session, tracker *exchange.Tracker, sender RequestSender) *Client {
	return &Client{
		server:   server,
		session:  session,
		tracker:  tracker,
		sender:   sender,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Session 返回底层会话
func (c *Client) Session() *Session {
	return c.session
}

// Request 发起一次租约交换
//
// 超时返回 ErrRequestTimeout，会话进入 TimedOut。
func (c *Client) Request(ctx context.Context, wantsLease bool) (*Outcome, error) {
	if c.sender == nil {
		return nil, ErrNoSender
	}
	req, err := c.session.BuildRequest(wantsLease)
	if err != nil {
		return nil, err
	}

	timeout := c.session.config.RequestTimeout
	timer := c.tracker.Clock().Timer(timeout)
	defer timer.Stop()

	id, ch := c.tracker.Register(exchangeKind, timeout)
	c.track(id)
	defer c.untrack(id)
	if err := c.sender.SendLeaseRequest(ctx, id, c.server, req); err != nil {
		c.tracker.Cancel(id)
		c.session.abandon()
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	logger.Debug("已发出租约请求", "id", id, "server", c.server.ShortString(), "referralOnly", req.IsReferralOnly())

	select {
	case <-ctx.Done():
		c.tracker.Cancel(id)
		c.session.abandon()
		return nil, ctx.Err()
	case <-timer.C:
		c.tracker.Cancel(id)
		c.session.CheckTimeout(c.tracker.Clock().Now())
		return nil, ErrRequestTimeout
	case msg, ok := <-ch:
		if !ok {
			c.session.CheckTimeout(c.tracker.Clock().Now())
			return nil, ErrRequestTimeout
		}
		resp, ok := msg.(*LeaseResponse)
		if !ok {
			c.session.abandon()
			return nil, fmt.Errorf("%w: %T", ErrUnexpectedResponse, msg)
		}
		return c.session.HandleResponse(resp, c.tracker.Clock().Now())
	}
}

// HandleResponse 投递收到的响应
//
// 响应声明的 server_peer 必须是本客户端的汇聚节点，否则返回 ErrServerMismatch。
func (c *Client) HandleResponse(id uuid.UUID, resp *LeaseResponse) error {
	if resp == nil {
		return ErrUnexpectedResponse
	}
	if err := resp.Validate(); err != nil {
		return err
	}
	if !c.owns(id) {
		return ErrUnknownCorrelation
	}
	if resp.ServerPeer != c.server {
		logger.Warn("拒绝来源不符的租约响应", "id", id, "want", c.server.ShortString(), "got", resp.ServerPeer.ShortString())
		return fmt.Errorf("%w: %s", ErrServerMismatch, resp.ServerPeer.ShortString())
	}
	if !c.tracker.Resolve(id, exchangeKind, resp) {
		return ErrUnknownCorrelation
	}
	return nil
}

// 只有本客户端发出的关联 ID 才能在这里投递，
// 其他汇聚节点的响应不能借用它们的关联 ID
func (c *Client) track(id uuid.UUID) {
	c.mu.Lock()
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) untrack(id uuid.UUID) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

func (c *Client) owns(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[id]
	return ok
}
