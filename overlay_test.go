package overlay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/codec"
	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/srdi"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

func memConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Storage.InMemory = true
	return cfg
}

func newMockClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	return clk
}

func startNode(t *testing.T, opts ...Option) *Node {
	t.Helper()
	n, err := New(append([]Option{WithConfig(memConfig())}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	t.Cleanup(func() { _ = n.Close() })
	return n
}

// loopback 把发起方的请求直接交给对端节点处理，再把响应投递回发起方
type loopback struct {
	local  **Node
	remote **Node
}

func (l *loopback) roundTrip(id uuid.UUID, msg codec.Message) error {
	local, remote := *l.local, *l.remote
	data, err := local.Codec().Encode(msg)
	if err != nil {
		return err
	}
	reply, _, err := remote.HandleRequest(data)
	if err != nil {
		return err
	}
	return local.HandleResponse(id, reply)
}

func (l *loopback) SendQuery(_ context.Context, id uuid.UUID, q *route.RouteQuery) error {
	return l.roundTrip(id, q)
}

func (l *loopback) SendLeaseRequest(_ context.Context, id uuid.UUID, _ types.PeerID, req *lease.LeaseRequest) error {
	return l.roundTrip(id, req)
}

// ============================================================================
//                              生命周期
// ============================================================================

// TestNode_Lifecycle 测试启动、停止与关闭
func TestNode_Lifecycle(t *testing.T) {
	n, err := New(WithConfig(memConfig()), WithPeerID("S1"), WithEndpoints("tcp://10.0.0.1:9701"))
	require.NoError(t, err)

	assert.Equal(t, types.PeerID("S1"), n.ID())
	assert.ErrorIs(t, n.Stop(context.Background()), ErrNotStarted)

	require.NoError(t, n.Start(context.Background()))
	assert.ErrorIs(t, n.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Start(context.Background()), ErrNodeClosed)
	assert.NoError(t, n.Close())
}

// TestNode_CloseWithoutStart 测试未启动时关闭
func TestNode_CloseWithoutStart(t *testing.T) {
	n, err := New(WithConfig(memConfig()), WithPeerID("S1"))
	require.NoError(t, err)
	assert.NoError(t, n.Close())
}

// TestNew_Options 测试选项错误
func TestNew_Options(t *testing.T) {
	_, err := New(WithPreset("bogus"))
	assert.ErrorIs(t, err, ErrUnknownPreset)

	cfg := memConfig()
	cfg.Lease.MaxReferrals = -1
	_, err = New(WithConfig(cfg))
	assert.Error(t, err)

	disk := memConfig()
	disk.Storage.DataDir = t.TempDir()
	n, err := New(WithConfig(disk), WithPreset(PresetRendezvous), WithPeerID("R1"))
	require.NoError(t, err)
	defer n.Close()
	assert.NotNil(t, n.LeaseServer())
	assert.NotNil(t, n.Leases())
	assert.NotNil(t, n.Metrics())
}

// ============================================================================
//                              入站消息
// ============================================================================

// TestNode_HandleRequest_RouteQuery 测试应答路由查询
func TestNode_HandleRequest_RouteQuery(t *testing.T) {
	clk := newMockClock()
	n := startNode(t, WithPeerID("S1"), WithClock(clk))

	r, err := types.NewRoute("P3", types.NewAccessPoint("", "tcp://10.0.0.3:9701"), []types.AccessPoint{types.NewAccessPoint("P1")})
	require.NoError(t, err)
	n.RouteCache().StoreRoute(r, clk.Now(), time.Time{})

	q, err := route.BuildQuery("P3", nil, nil)
	require.NoError(t, err)
	data, err := n.Codec().Encode(q)
	require.NoError(t, err)

	reply, msg, err := n.HandleRequest(data)
	require.NoError(t, err)
	assert.IsType(t, &route.RouteQuery{}, msg)

	resp, err := codec.DecodeAs[*route.RouteResponse](n.Codec(), reply)
	require.NoError(t, err)
	require.True(t, resp.HasDestinationRoute())
	assert.Equal(t, types.PeerID("P3"), resp.DestinationRoute.Destination())
	require.NotNil(t, resp.SourceRoute)
	assert.Equal(t, types.PeerID("S1"), resp.SourceRoute.Destination())
}

// TestNode_HandleRequest_LeaseRequest 测试处理租约请求
func TestNode_HandleRequest_LeaseRequest(t *testing.T) {
	n := startNode(t, WithPeerID("S1"), WithClock(newMockClock()))

	req, err := lease.NewLeaseRequest("C1", lease.WithLease(10*time.Minute))
	require.NoError(t, err)
	data, err := n.Codec().Encode(req)
	require.NoError(t, err)

	reply, _, err := n.HandleRequest(data)
	require.NoError(t, err)

	resp, err := codec.DecodeAs[*lease.LeaseResponse](n.Codec(), reply)
	require.NoError(t, err)
	assert.Equal(t, types.PeerID("S1"), resp.ServerPeer)
	assert.True(t, resp.GrantsLease())
	require.NotNil(t, resp.ServerAdvertisement)
	assert.Equal(t, n.LeaseServer().Generation(), resp.ServerAdvertisement.Generation.UUID)

	leases, err := n.LeaseServer().ActiveLeases()
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, types.PeerID("C1"), leases[0].Peer)
}

// TestNode_HandleRequest_Other 测试 SRDI 与非请求消息
func TestNode_HandleRequest_Other(t *testing.T) {
	n := startNode(t, WithPeerID("S1"))

	m, err := srdi.NewMessage("S1", srdi.ScopeReplicate, "svc", srdi.Entry{SecondaryKey: "k", Value: "v", Expiration: time.Minute})
	require.NoError(t, err)
	data, err := n.Codec().Encode(m)
	require.NoError(t, err)

	reply, msg, err := n.HandleRequest(data)
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.IsType(t, &srdi.Message{}, msg)

	resp, err := route.NewRouteResponse(nil, nil)
	require.NoError(t, err)
	data, err = n.Codec().Encode(resp)
	require.NoError(t, err)
	_, _, err = n.HandleRequest(data)
	assert.ErrorIs(t, err, codec.ErrMalformed)

	_, _, err = n.HandleRequest([]byte{0xff})
	assert.Error(t, err)
}

// TestNode_HandleResponse_Unknown 测试无人等待的响应
func TestNode_HandleResponse_Unknown(t *testing.T) {
	n := startNode(t, WithPeerID("C1"))

	resp, err := route.NewRouteResponse(nil, nil)
	require.NoError(t, err)
	data, err := n.Codec().Encode(resp)
	require.NoError(t, err)

	assert.ErrorIs(t, n.HandleResponse(uuid.New(), data), route.ErrUnknownCorrelation)
}

// ============================================================================
//                              两节点交换
// ============================================================================

// TestNode_Exchanges 测试两节点间的路由发现与租约交换
func TestNode_Exchanges(t *testing.T) {
	var client, server *Node
	lb := &loopback{local: &client, remote: &server}
	clk := newMockClock()

	server = startNode(t, WithPeerID("S1"), WithEndpoints("tcp://10.0.0.1:9701"), WithClock(clk))
	client = startNode(t, WithPeerID("C1"), WithClock(clk), WithQuerySender(lb), WithLeaseSender(lb))

	r, err := types.NewRoute("P3", types.AccessPoint{}, []types.AccessPoint{types.NewAccessPoint("P2")})
	require.NoError(t, err)
	server.RouteCache().StoreRoute(r, clk.Now(), time.Time{})

	t.Run("route discovery", func(t *testing.T) {
		got, err := client.Discoverer().Discover(context.Background(), "P3", nil)
		require.NoError(t, err)
		assert.True(t, got.Equal(r))

		cached, ok := client.RouteCache().LookupRoute("S1")
		require.True(t, ok, "source route of the responder is cached")
		assert.Equal(t, []string{"tcp://10.0.0.1:9701"}, cached.DestinationAccessPoint().Endpoints)
	})

	t.Run("bad hop avoided", func(t *testing.T) {
		_, err := client.Discoverer().Discover(context.Background(), "P3", []types.PeerID{"P2"})
		assert.ErrorIs(t, err, route.ErrNoRoute)
	})

	t.Run("lease", func(t *testing.T) {
		out, err := client.Leases().Client("S1").Request(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, lease.StateLeased, out.Status.State)
		assert.True(t, out.AdvertisementChanged)

		_, ok := client.RouteCache().LeaseExpiry("S1")
		assert.True(t, ok)

		leases, err := server.LeaseServer().ActiveLeases()
		require.NoError(t, err)
		require.Len(t, leases, 1)
		assert.Equal(t, types.PeerID("C1"), leases[0].Peer)
	})
}

// parkingSender 只记录关联 ID，响应由测试手动投递
type parkingSender struct{ ids chan uuid.UUID }

func newParkingSender() *parkingSender {
	return &parkingSender{ids: make(chan uuid.UUID, 4)}
}

func (s *parkingSender) SendQuery(_ context.Context, id uuid.UUID, _ *route.RouteQuery) error {
	s.ids <- id
	return nil
}

func (s *parkingSender) SendLeaseRequest(_ context.Context, id uuid.UUID, _ types.PeerID, _ *lease.LeaseRequest) error {
	s.ids <- id
	return nil
}

// TestNode_HandleResponse_WrongKind 关联 ID 正确但响应类型不符时不会完成交换
func TestNode_HandleResponse_WrongKind(t *testing.T) {
	snd := newParkingSender()
	n := startNode(t, WithPeerID("C1"), WithClock(newMockClock()), WithQuerySender(snd), WithLeaseSender(snd))

	type result struct {
		out *lease.Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := n.Leases().Client("S9").Request(context.Background(), true)
		done <- result{out, err}
	}()
	id := <-snd.ids

	rresp, err := route.NewRouteResponse(nil, nil)
	require.NoError(t, err)
	data, err := n.Codec().Encode(rresp)
	require.NoError(t, err)
	assert.ErrorIs(t, n.HandleResponse(id, data), route.ErrUnknownCorrelation)

	lresp, err := lease.BuildLeaseResponse("S9", durationPtr(time.Minute), nil, nil, nil)
	require.NoError(t, err)
	data, err = n.Codec().Encode(lresp)
	require.NoError(t, err)
	require.NoError(t, n.HandleResponse(id, data))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, lease.StateLeased, r.out.Status.State)
	case <-time.After(5 * time.Second):
		t.Fatal("lease request did not complete")
	}
}

// TestNode_HandleResponse_UnknownServer 未知汇聚节点的租约响应不会创建客户端
func TestNode_HandleResponse_UnknownServer(t *testing.T) {
	n := startNode(t, WithPeerID("C1"))

	for _, server := range []types.PeerID{"X1", "X2", "X3"} {
		resp, err := lease.BuildLeaseResponse(server, durationPtr(time.Minute), nil, nil, nil)
		require.NoError(t, err)
		data, err := n.Codec().Encode(resp)
		require.NoError(t, err)
		assert.ErrorIs(t, n.HandleResponse(uuid.New(), data), lease.ErrServerMismatch)

		_, ok := n.Leases().Lookup(server)
		assert.False(t, ok)
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// ============================================================================
//                              游走信封
// ============================================================================

type fixedSelector []types.PeerID

func (s fixedSelector) SelectPeers(_ types.Direction, exclude types.PeerSet, _ int) []types.PeerID {
	var out []types.PeerID
	for _, p := range s {
		if !exclude.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

type countingSender struct{ sent []types.PeerID }

func (s *countingSender) Send(_ context.Context, peer types.PeerID, _ *walk.LimitedRangeEnvelope, _ []byte) error {
	if peer == "DOWN" {
		return errors.New("unreachable")
	}
	s.sent = append(s.sent, peer)
	return nil
}

// TestNode_HandleEnvelope 测试信封解码与继续转发
func TestNode_HandleEnvelope(t *testing.T) {
	snd := &countingSender{}
	n := startNode(t, WithPeerID("S1"), WithWalkTransport(fixedSelector{"A", "B", "P0", "DOWN"}, snd))

	env, err := walk.Wrap(2, types.DirBoth, "P0", "svc", nil)
	require.NoError(t, err)
	data, err := n.Codec().Encode(env)
	require.NoError(t, err)

	res, err := n.HandleEnvelope(context.Background(), "P0", data, []byte("payload"))
	require.NoError(t, err)
	require.False(t, res.Terminal())
	assert.Equal(t, uint32(1), res.Envelope.TTL)
	assert.ElementsMatch(t, []types.PeerID{"A", "B"}, res.Sent)
	assert.Equal(t, []types.PeerID{"DOWN"}, res.Failed)

	_, err = n.HandleEnvelope(context.Background(), "P0", []byte{0x08}, nil)
	assert.Error(t, err)
}
