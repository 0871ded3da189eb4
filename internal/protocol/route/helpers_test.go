package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// staticKnowledge 固定的本地路由知识
type staticKnowledge map[types.PeerID][]interfaces.RouteCandidate

func (k staticKnowledge) Candidates(dest types.PeerID) []interfaces.RouteCandidate {
	return k[dest]
}

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

func candidate(r types.Route, at time.Time) interfaces.RouteCandidate {
	return interfaces.RouteCandidate{Route: r, ValidatedAt: at}
}
