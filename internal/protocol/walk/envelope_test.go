package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/types"
)

func strPtr(s string) *string { return &s }

// TestWrap 测试构造信封
func TestWrap(t *testing.T) {
	env, err := Wrap(3, types.DirUp, "P1", "discovery", strPtr("q=x"))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), env.TTL)
	assert.Equal(t, "q=x", *env.SourceServiceParams)
}

// TestWrap_Errors 测试非法信封
func TestWrap_Errors(t *testing.T) {
	tests := []struct {
		name string
		ttl  uint32
		dir  types.Direction
		peer types.PeerID
		svc  string
		want error
	}{
		{"zero ttl", 0, types.DirUp, "P1", "svc", types.ErrInvalidRange},
		{"unknown direction", 1, types.DirUnknown, "P1", "svc", types.ErrUnrecognizedValue},
		{"out of range direction", 1, types.Direction(7), "P1", "svc", types.ErrUnrecognizedValue},
		{"missing source", 1, types.DirBoth, "", "svc", types.ErrMissingField},
		{"missing service", 1, types.DirDown, "P1", "", types.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Wrap(tt.ttl, tt.dir, tt.peer, tt.svc, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestForward_TTLProperty TTL 单调递减，来源字段不变，TTL 为 1 时终止
func TestForward_TTLProperty(t *testing.T) {
	dirs := []types.Direction{types.DirUp, types.DirDown, types.DirBoth}
	params := []*string{nil, strPtr(""), strPtr("k=v")}

	for n := uint32(1); n <= 64; n++ {
		for _, dir := range dirs {
			for _, p := range params {
				env, err := Wrap(n, dir, "P1", "svc", p)
				require.NoError(t, err)

				next := Forward(env)
				if n == 1 {
					assert.Nil(t, next)
					continue
				}
				require.NotNil(t, next)
				assert.Equal(t, n-1, next.TTL)
				assert.True(t, next.SameSource(env))
				assert.Equal(t, n, env.TTL, "input untouched")
			}
		}
	}
}

// TestForward_Chain 逐跳转发直到终点
func TestForward_Chain(t *testing.T) {
	env, err := Wrap(4, types.DirBoth, "P1", "svc", nil)
	require.NoError(t, err)

	hops := 0
	for e := env; e != nil; e = Forward(e) {
		hops++
		assert.Equal(t, types.PeerID("P1"), e.SourcePeer)
	}
	assert.Equal(t, 4, hops)
}

// TestForward_ParamsNotShared 转发后的参数与原信封不共享
func TestForward_ParamsNotShared(t *testing.T) {
	env, err := Wrap(2, types.DirUp, "P1", "svc", strPtr("a"))
	require.NoError(t, err)
	next := Forward(env)
	*next.SourceServiceParams = "b"
	assert.Equal(t, "a", *env.SourceServiceParams)
}
