package walk

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/identity"
	"github.com/dep2p/go-overlay/pkg/types"
)

// staticSelector 按方向返回固定邻居
type staticSelector struct {
	up, down []types.PeerID
}

func (s *staticSelector) SelectPeers(dir types.Direction, exclude types.PeerSet, limit int) []types.PeerID {
	var all []types.PeerID
	if dir.Includes(types.DirUp) {
		all = append(all, s.up...)
	}
	if dir.Includes(types.DirDown) {
		all = append(all, s.down...)
	}
	var out []types.PeerID
	for _, p := range all {
		if exclude.Has(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// recordingSender 记录发送
type recordingSender struct {
	mu   sync.Mutex
	sent map[types.PeerID]*LimitedRangeEnvelope
	fail types.PeerSet
}

func newRecordingSender(fail ...types.PeerID) *recordingSender {
	return &recordingSender{sent: make(map[types.PeerID]*LimitedRangeEnvelope), fail: types.NewPeerSet(fail...)}
}

func (s *recordingSender) Send(_ context.Context, peer types.PeerID, env *LimitedRangeEnvelope, _ []byte) error {
	if s.fail.Has(peer) {
		return errors.New("unreachable " + string(peer))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[peer] = env
	return nil
}

func sorted(ids []types.PeerID) []types.PeerID {
	out := append([]types.PeerID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TestForwarder_Propagate 测试转发并排除来源与上一跳
func TestForwarder_Propagate(t *testing.T) {
	sel := &staticSelector{up: []types.PeerID{"R1", "R2", "P0"}, down: []types.PeerID{"E1", "P9"}}
	snd := newRecordingSender()
	f := NewForwarder("SELF", sel, snd, nil)

	env, err := Wrap(3, types.DirBoth, "P0", "svc", nil)
	require.NoError(t, err)

	res, err := f.Propagate(context.Background(), env, "P9", []byte("payload"))
	require.NoError(t, err)
	require.False(t, res.Terminal())

	assert.Equal(t, []types.PeerID{"E1", "R1", "R2"}, sorted(res.Sent))
	for _, e := range snd.sent {
		assert.Equal(t, uint32(2), e.TTL)
		assert.Equal(t, types.PeerID("P0"), e.SourcePeer)
	}
}

// TestForwarder_Terminal 测试 TTL 耗尽
func TestForwarder_Terminal(t *testing.T) {
	snd := newRecordingSender()
	f := NewForwarder("SELF", &staticSelector{up: []types.PeerID{"R1"}}, snd, nil)

	env, err := Wrap(1, types.DirUp, "P0", "svc", nil)
	require.NoError(t, err)

	res, err := f.Propagate(context.Background(), env, "P0", nil)
	require.NoError(t, err)
	assert.True(t, res.Terminal())
	assert.Empty(t, snd.sent)
}

// TestForwarder_MaxTTL 测试 TTL 超限
func TestForwarder_MaxTTL(t *testing.T) {
	f := NewForwarder("SELF", &staticSelector{}, newRecordingSender(), nil, WithMaxTTL(5))
	env := &LimitedRangeEnvelope{TTL: 6, Direction: types.DirUp, SourcePeer: "P0", SourceServiceName: "svc"}

	_, err := f.Propagate(context.Background(), env, "P0", nil)
	assert.ErrorIs(t, err, types.ErrInvalidRange)

	_, err = f.Propagate(context.Background(), &LimitedRangeEnvelope{}, "P0", nil)
	assert.ErrorIs(t, err, types.ErrInvalidRange)
}

// TestForwarder_Fanout 测试扇出上限
func TestForwarder_Fanout(t *testing.T) {
	sel := &staticSelector{down: []types.PeerID{"E1", "E2", "E3", "E4"}}
	snd := newRecordingSender()
	f := NewForwarder("SELF", sel, snd, nil, WithMaxFanout(2), WithDefaultTTL(2))

	res, err := f.Originate(context.Background(), types.DirDown, "svc", nil, nil)
	require.NoError(t, err)
	assert.Len(t, res.Sent, 2)
	assert.Equal(t, uint32(2), res.Envelope.TTL, "originator sends at full TTL")
	assert.Equal(t, types.PeerID("SELF"), res.Envelope.SourcePeer)
}

// TestForwarder_SendFailures 测试发送失败
func TestForwarder_SendFailures(t *testing.T) {
	sel := &staticSelector{up: []types.PeerID{"R1", "R2"}}
	env, err := Wrap(3, types.DirUp, "P0", "svc", nil)
	require.NoError(t, err)

	partial := NewForwarder("SELF", sel, newRecordingSender("R1"), nil)
	res, err := partial.Propagate(context.Background(), env, "P0", nil)
	require.NoError(t, err)
	assert.Equal(t, []types.PeerID{"R2"}, res.Sent)
	assert.Equal(t, []types.PeerID{"R1"}, res.Failed)

	all := NewForwarder("SELF", sel, newRecordingSender("R1", "R2"), nil)
	_, err = all.Propagate(context.Background(), env, "P0", nil)
	assert.Error(t, err)
}

// TestForwarder_NotConfigured 测试缺少协作者
func TestForwarder_NotConfigured(t *testing.T) {
	f := NewForwarder("SELF", nil, nil, nil)
	_, err := f.Originate(context.Background(), types.DirUp, "svc", nil, nil)
	assert.ErrorIs(t, err, ErrNoSelector)
}

// TestModule 测试 Fx 模块
func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Identity.PeerID = "SELF"
	cfg.Walk.DefaultTTL = 2

	var f *Forwarder
	app := fxtest.New(t,
		fx.Supply(cfg),
		identity.Module,
		fx.Provide(
			func() PeerSelector { return &staticSelector{up: []types.PeerID{"R1"}} },
			func() Sender { return newRecordingSender() },
		),
		Module,
		fx.Populate(&f),
	)
	defer app.RequireStart().RequireStop()

	res, err := f.Originate(context.Background(), types.DirUp, "svc", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []types.PeerID{"R1"}, res.Sent)
	assert.Equal(t, types.PeerID("SELF"), res.Envelope.SourcePeer)
}
