package lease

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

func mockClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	return clk
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

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// memStore 内存租约存储
type memStore struct {
	mu   sync.Mutex
	recs map[types.PeerID]interfaces.LeaseRecord
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[types.PeerID]interfaces.LeaseRecord)}
}

func (s *memStore) Put(rec interfaces.LeaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Peer] = rec
	return nil
}

func (s *memStore) Get(peer types.PeerID) (interfaces.LeaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[peer]
	if !ok {
		return interfaces.LeaseRecord{}, interfaces.ErrLeaseNotFound
	}
	return rec, nil
}

func (s *memStore) Delete(peer types.PeerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, peer)
	return nil
}

func (s *memStore) List(now time.Time) ([]interfaces.LeaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []interfaces.LeaseRecord
	for _, rec := range s.recs {
		if !rec.Expired(now) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Peer < out[j].Peer })
	return out, nil
}

func (s *memStore) EvictExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for peer, rec := range s.recs {
		if rec.Expired(now) {
			delete(s.recs, peer)
			n++
		}
	}
	return n, nil
}

func (s *memStore) Close() error { return nil }

// staticReferrals 固定推荐来源
type staticReferrals []types.Route

func (r staticReferrals) Referrals(exclude types.PeerID, limit int) []types.Route {
	var out []types.Route
	for _, route := range r {
		if len(out) == limit {
			break
		}
		if route.Destination() != exclude {
			out = append(out, route)
		}
	}
	return out
}
