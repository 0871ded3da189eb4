package types

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//                              构造测试
// ============================================================================

// TestNewRoute_Valid 测试合法路由构造
func TestNewRoute_Valid(t *testing.T) {
	r, err := NewRoute("P3", NewAccessPoint("", "tcp://10.0.0.3:9701"), []AccessPoint{
		NewAccessPoint("P1", "tcp://10.0.0.1:9701"),
		NewAccessPoint("P2"),
	})
	require.NoError(t, err)

	assert.Equal(t, PeerID("P3"), r.Destination())
	assert.Equal(t, PeerID("P3"), r.DestinationAccessPoint().Peer, "implied peer is filled")
	assert.Equal(t, 2, r.HopCount())
	assert.Equal(t, PeerID("P1"), r.FirstHop())
	assert.False(t, r.HasLoop())
	assert.Equal(t, "P1 -> P2 -> P3", r.String())
}

// TestNewRoute_Direct 测试直连路由
func TestNewRoute_Direct(t *testing.T) {
	r, err := NewRoute("P9", AccessPoint{}, nil)
	require.NoError(t, err)
	assert.Equal(t, PeerID("P9"), r.FirstHop())
	assert.Empty(t, r.Hops())
}

// TestNewRoute_Errors 测试非法路由构造
func TestNewRoute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		dest   PeerID
		destAP AccessPoint
		hops   []AccessPoint
		want   error
	}{
		{"missing destination", "", AccessPoint{}, nil, ErrMissingField},
		{"hop without peer", "P3", AccessPoint{}, []AccessPoint{NewAccessPoint("", "tcp://x")}, ErrMissingField},
		{"destination mismatch", "P3", NewAccessPoint("P4"), nil, ErrInconsistentFields},
		{"hop repeats destination", "P3", AccessPoint{}, []AccessPoint{NewAccessPoint("P3")}, ErrCycleDetected},
		{"hop repeats hop", "P3", AccessPoint{}, []AccessPoint{NewAccessPoint("P1"), NewAccessPoint("P2"), NewAccessPoint("P1")}, ErrCycleDetected},
		{"empty endpoint", "P3", NewAccessPoint("", ""), nil, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoute(tt.dest, tt.destAP, tt.hops)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestNewRoute_CycleReportsPeer 测试环路错误携带重复节点
func TestNewRoute_CycleReportsPeer(t *testing.T) {
	_, err := NewRoute("P3", AccessPoint{}, []AccessPoint{NewAccessPoint("P1"), NewAccessPoint("P1")})
	require.Error(t, err)

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, KindCycleDetected, ve.Kind)
	assert.Equal(t, PeerID("P1"), ve.Peer)
	assert.Equal(t, KindCycleDetected, KindOf(err))
}

// TestNewRoute_Immutable 测试构造后不可变
func TestNewRoute_Immutable(t *testing.T) {
	hops := []AccessPoint{NewAccessPoint("P1", "tcp://a")}
	r, err := NewRoute("P3", AccessPoint{}, hops)
	require.NoError(t, err)

	hops[0].Peer = "P3"
	hops[0].Endpoints[0] = "tcp://mutated"
	assert.Equal(t, PeerID("P1"), r.Hops()[0].Peer)
	assert.Equal(t, "tcp://a", r.Hops()[0].Endpoints[0])

	got := r.Hops()
	got[0].Endpoints[0] = "tcp://mutated"
	assert.Equal(t, "tcp://a", r.Hops()[0].Endpoints[0])
}

// ============================================================================
//                              属性测试：无环
// ============================================================================

// TestNewRoute_CycleFreedomProperty 任一节点在 {dest} ∪ hops 中出现两次即 CycleDetected
func TestNewRoute_CycleFreedomProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []PeerID{"P0", "P1", "P2", "P3", "P4", "P5", "P6"}

	for i := 0; i < 2000; i++ {
		dest := pool[rng.Intn(len(pool))]
		n := rng.Intn(6)
		hops := make([]AccessPoint, n)
		for j := range hops {
			hops[j] = NewAccessPoint(pool[rng.Intn(len(pool))])
		}

		counts := map[PeerID]int{dest: 1}
		dup := false
		for _, h := range hops {
			counts[h.Peer]++
			if counts[h.Peer] > 1 {
				dup = true
			}
		}

		_, err := NewRoute(dest, AccessPoint{}, hops)
		if dup {
			assert.ErrorIs(t, err, ErrCycleDetected, "iteration %d", i)
			assert.True(t, HasLoop(dest, hops))
		} else {
			assert.NoError(t, err, "iteration %d", i)
			assert.False(t, HasLoop(dest, hops))
		}
	}
}

// ============================================================================
//                              规整测试
// ============================================================================

// TestNormalizeRoute 测试规整规则
func TestNormalizeRoute(t *testing.T) {
	t.Run("adjacent duplicate merged", func(t *testing.T) {
		r, err := NormalizeRoute("P3", AccessPoint{}, []AccessPoint{
			NewAccessPoint("P1", "tcp://a"),
			NewAccessPoint("P1", "udp://a", "tcp://a"),
			NewAccessPoint("P2"),
		})
		require.NoError(t, err)
		hops := r.Hops()
		require.Len(t, hops, 2)
		assert.Equal(t, []string{"tcp://a", "udp://a"}, hops[0].Endpoints)
	})

	t.Run("trailing destination merged", func(t *testing.T) {
		r, err := NormalizeRoute("P3", NewAccessPoint("", "tcp://d"), []AccessPoint{
			NewAccessPoint("P1"),
			NewAccessPoint("P3", "udp://d"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, r.HopCount())
		assert.Equal(t, []string{"tcp://d", "udp://d"}, r.DestinationAccessPoint().Endpoints)
	})

	t.Run("non adjacent repeat still a cycle", func(t *testing.T) {
		_, err := NormalizeRoute("P3", AccessPoint{}, []AccessPoint{
			NewAccessPoint("P1"), NewAccessPoint("P2"), NewAccessPoint("P1"),
		})
		assert.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("hop without peer rejected", func(t *testing.T) {
		_, err := NormalizeRoute("P3", AccessPoint{}, []AccessPoint{NewAccessPoint("", "tcp://x")})
		assert.ErrorIs(t, err, ErrMissingField)
	})
}

// TestRoute_Queries 测试查询方法
func TestRoute_Queries(t *testing.T) {
	r, err := NewRoute("P3", AccessPoint{}, []AccessPoint{NewAccessPoint("P2"), NewAccessPoint("P4")})
	require.NoError(t, err)

	assert.True(t, r.Contains("P2"))
	assert.True(t, r.Contains("P3"))
	assert.False(t, r.Contains("P9"))
	assert.False(t, r.HopsAvoid(NewPeerSet("P2")))
	assert.True(t, r.HopsAvoid(NewPeerSet("P7")))
	assert.False(t, r.WireAccessPoint().HasPeer())

	same, err := NewRoute("P3", NewAccessPoint("P3"), []AccessPoint{NewAccessPoint("P2"), NewAccessPoint("P4")})
	require.NoError(t, err)
	assert.True(t, r.Equal(same))
	assert.True(t, Route{}.IsZero())
}

func BenchmarkNewRoute(b *testing.B) {
	hops := make([]AccessPoint, 16)
	for i := range hops {
		hops[i] = NewAccessPoint(PeerID(fmt.Sprintf("P%d", i)), "tcp://x")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = NewRoute("dest", AccessPoint{}, hops)
	}
}
