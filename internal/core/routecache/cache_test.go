package routecache

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

func mustRoute(t *testing.T, dest types.PeerID, hops ...types.PeerID) types.Route {
	t.Helper()
	aps := make([]types.AccessPoint, len(hops))
	for i, h := range hops {
		aps[i] = types.NewAccessPoint(h)
	}
	r, err := types.NewRoute(dest, types.AccessPoint{}, aps)
	require.NoError(t, err)
	return r
}

func newCache(t *testing.T, clk clock.Clock) *Cache {
	t.Helper()
	c, err := New(Config{Size: 16, CandidatesPerPeer: 2, DefaultTTL: time.Minute}, clk)
	require.NoError(t, err)
	return c
}

// TestCache_StoreLookup 测试存储与查询排序
func TestCache_StoreLookup(t *testing.T) {
	clk := clock.NewMock()
	c := newCache(t, clk)

	long := mustRoute(t, "P3", "P1", "P2")
	short := mustRoute(t, "P3", "P4")
	now := clk.Now()

	c.StoreRoute(long, now, time.Time{})
	c.StoreRoute(short, now.Add(-time.Second), time.Time{})

	got, ok := c.LookupRoute("P3")
	require.True(t, ok)
	assert.True(t, got.Equal(short), "fewest hops first")

	cands := c.Candidates("P3")
	require.Len(t, cands, 2)
	assert.True(t, cands[1].Route.Equal(long))

	_, ok = c.LookupRoute("P9")
	assert.False(t, ok)
}

// TestCache_CandidateLimit 测试每节点候选上限
func TestCache_CandidateLimit(t *testing.T) {
	clk := clock.NewMock()
	c := newCache(t, clk)
	now := clk.Now()

	c.StoreRoute(mustRoute(t, "P3", "P1", "P2"), now, time.Time{})
	c.StoreRoute(mustRoute(t, "P3", "P4"), now, time.Time{})
	c.StoreRoute(mustRoute(t, "P3"), now, time.Time{})

	cands := c.Candidates("P3")
	require.Len(t, cands, 2)
	assert.Equal(t, 0, cands[0].Route.HopCount())
	assert.Equal(t, 1, cands[1].Route.HopCount())

	// 同一路由再次存储只更新校验时间
	c.StoreRoute(mustRoute(t, "P3", "P4"), now.Add(time.Second), time.Time{})
	cands = c.Candidates("P3")
	require.Len(t, cands, 2)
	assert.Equal(t, now.Add(time.Second), cands[1].ValidatedAt)
}

// TestCache_Expiry 测试过期
func TestCache_Expiry(t *testing.T) {
	clk := clock.NewMock()
	c := newCache(t, clk)
	now := clk.Now()

	c.StoreRoute(mustRoute(t, "P3"), now, now.Add(10*time.Second))
	c.StoreRoute(mustRoute(t, "P5"), now, time.Time{})
	c.StoreLease("P7", now.Add(5*time.Second))

	exp, ok := c.LeaseExpiry("P7")
	require.True(t, ok)
	assert.Equal(t, now.Add(5*time.Second), exp)

	clk.Add(10 * time.Second)
	assert.Empty(t, c.Candidates("P3"), "expired candidates hidden before eviction")
	_, ok = c.LeaseExpiry("P7")
	assert.False(t, ok)

	assert.Equal(t, 2, c.EvictExpired(clk.Now()))
	assert.Equal(t, 1, c.Len())

	clk.Add(time.Minute)
	assert.Equal(t, 1, c.EvictExpired(clk.Now()))
	assert.Equal(t, 0, c.Len())
}

// TestCache_Invalidate 测试删除
func TestCache_Invalidate(t *testing.T) {
	clk := clock.NewMock()
	c := newCache(t, clk)
	c.StoreRoute(mustRoute(t, "P3"), clk.Now(), time.Time{})
	c.InvalidateRoutes("P3")
	_, ok := c.LookupRoute("P3")
	assert.False(t, ok)
}

// TestNew_InvalidSize 测试非法容量
func TestNew_InvalidSize(t *testing.T) {
	_, err := New(Config{Size: 0, CandidatesPerPeer: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

// TestModule 测试 Fx 模块
func TestModule(t *testing.T) {
	var rc interfaces.RouteCache
	var rk interfaces.RouteKnowledge

	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		fx.Provide(func() clock.Clock { return clock.NewMock() }),
		Module,
		fx.Populate(&rc, &rk),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, rc)
	assert.Same(t, rc.(*Cache), rk.(*Cache))
}
