package lease

import (
	"sync"
	"time"

	"github.com/dep2p/go-overlay/internal/core/exchange"
	"github.com/dep2p/go-overlay/pkg/types"
)

// Manager 管理本节点对各汇聚节点的租约客户端
type Manager struct {
	self    types.PeerID
	config  *Config
	tracker *exchange.Tracker
	sender  RequestSender
	opts    []SessionOption

	mu      sync.Mutex
	clients map[types.PeerID]*Client
}

// NewManager 创建管理器
func NewManager(self types.PeerID, cfg *Config, tracker *exchange.Tracker, sender RequestSender, opts ...SessionOption) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Manager{
		self:    self,
		config:  cfg,
		tracker: tracker,
		sender:  sender,
		opts:    opts,
		clients: make(map[types.PeerID]*Client),
	}
}

// Client 返回到 server 的客户端，不存在时创建
func (m *Manager) Client(server types.PeerID) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[server]; ok {
		return c
	}
	session := NewSession(m.self, m.config, m.tracker.Clock(), m.opts...)
	c := NewClient(server, session, m.tracker, m.sender)
	m.clients[server] = c
	return c
}

// Lookup 返回到 server 的已有客户端，不会创建新客户端
func (m *Manager) Lookup(server types.PeerID) (*Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[server]
	return c, ok
}

// Remove 移除到 server 的客户端
func (m *Manager) Remove(server types.PeerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, server)
}

// Tick 推进所有会话的时钟，返回需要续约的汇聚节点
func (m *Manager) Tick(now time.Time) []types.PeerID {
	m.mu.Lock()
	clients := make(map[types.PeerID]*Client, len(m.clients))
	for k, v := range m.clients {
		clients[k] = v
	}
	m.mu.Unlock()

	var due []types.PeerID
	for server, c := range clients {
		if c.session.Tick(now) {
			logger.Info("租约已到期", "server", server.ShortString())
		}
		if c.session.NeedsRenewal(now) {
			due = append(due, server)
		}
	}
	return due
}
