package lease

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	sent := Status{State: StateRequestSent, WantsLease: true}
	sentReferralOnly := Status{State: StateRequestSent}

	tests := []struct {
		name    string
		from    Status
		event   Event
		want    State
		wantErr bool
	}{
		{"idle send", Status{}, Event{Kind: EventSend, WantsLease: true}, StateRequestSent, false},
		{"double send", sent, Event{Kind: EventSend}, StateRequestSent, true},
		{"grant", sent, Event{Kind: EventResponse, At: now, Offered: durationPtr(time.Minute)}, StateLeased, false},
		{"zero lease no referrals", sent, Event{Kind: EventResponse, At: now, Offered: durationPtr(0)}, StateDenied, false},
		{"absent lease with referrals", sent, Event{Kind: EventResponse, At: now, UsableReferrals: 2}, StateReferralOnly, false},
		{"referral only request", sentReferralOnly, Event{Kind: EventResponse, At: now}, StateReferralOnly, false},
		{"response while idle", Status{}, Event{Kind: EventResponse, At: now}, StateIdle, true},
		{"timeout", sent, Event{Kind: EventTimeout, At: now}, StateTimedOut, false},
		{"timeout while leased", Status{State: StateLeased}, Event{Kind: EventTimeout, At: now}, StateLeased, true},
		{"resend after timeout", Status{State: StateTimedOut}, Event{Kind: EventSend, WantsLease: true}, StateRequestSent, false},
		{"renew while leased", Status{State: StateLeased, ExpiresAt: now.Add(time.Minute)}, Event{Kind: EventSend, WantsLease: true}, StateRequestSent, false},
		{"unknown event", Status{}, Event{Kind: EventKind(99)}, StateIdle, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got.State)
		})
	}
}

func TestTransition_LeaseExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s, err := Transition(Status{State: StateRequestSent, WantsLease: true},
		Event{Kind: EventResponse, At: now, Offered: durationPtr(10 * time.Minute)})
	require.NoError(t, err)
	require.Equal(t, StateLeased, s.State)
	assert.True(t, s.ExpiresAt.Equal(now.Add(10*time.Minute)))
	assert.True(t, s.HasLease(now))

	s, err = Transition(s, Event{Kind: EventClock, At: now.Add(9 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, StateLeased, s.State)

	s, err = Transition(s, Event{Kind: EventClock, At: now.Add(10 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State)
	assert.True(t, s.ExpiresAt.IsZero())
	assert.False(t, s.HasLease(now.Add(10*time.Minute)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "leased", StateLeased.String())
	assert.Equal(t, "referral_only", StateReferralOnly.String())
	assert.Equal(t, "state(42)", State(42).String())
}
