package srdi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/types"
)

func TestNewMessage(t *testing.T) {
	m, err := NewMessage("P1", ScopeReplicate, "Peer",
		Entry{SecondaryKey: "Name", Value: "alpha", Expiration: time.Minute},
		Entry{SecondaryKey: "PID", Value: "urn:x", Expiration: time.Hour},
	)
	require.NoError(t, err)
	assert.Len(t, m.Entries, 2)
	assert.True(t, m.Forwardable())
}

func TestMessage_Validate(t *testing.T) {
	ok := Entry{SecondaryKey: "Name", Value: "v", Expiration: time.Minute}

	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"missing owner", Message{Scope: ScopePersistOnly, PrimaryKey: "Peer"}, types.ErrMissingField},
		{"unknown scope", Message{Owner: "P1", PrimaryKey: "Peer"}, types.ErrUnrecognizedValue},
		{"missing primary key", Message{Owner: "P1", Scope: ScopePersistOnly}, types.ErrMissingField},
		{"missing secondary key", Message{Owner: "P1", Scope: ScopePersistOnly, PrimaryKey: "Peer", Entries: []Entry{ok, {Expiration: time.Minute}}}, types.ErrMissingField},
		{"zero expiration", Message{Owner: "P1", Scope: ScopePersistOnly, PrimaryKey: "Peer", Entries: []Entry{{SecondaryKey: "k"}}}, types.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.msg.Validate(), tt.want)
		})
	}
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("Replicate")
	require.NoError(t, err)
	assert.Equal(t, ScopeReplicate, s)

	s, err = ParseScope("persist_only")
	require.NoError(t, err)
	assert.Equal(t, ScopePersistOnly, s)
	assert.Equal(t, "persist_only", s.String())

	_, err = ParseScope("broadcast")
	assert.ErrorIs(t, err, types.ErrUnrecognizedValue)
}

func TestMessage_Live(t *testing.T) {
	now := time.Now()
	m, err := NewMessage("P1", ScopePersistOnly, "Peer",
		Entry{SecondaryKey: "a", Expiration: time.Minute},
		Entry{SecondaryKey: "b", Expiration: time.Hour},
	)
	require.NoError(t, err)
	assert.False(t, m.Forwardable())

	live := m.Live(now, now.Add(time.Minute))
	require.Len(t, live, 1)
	assert.Equal(t, "b", live[0].SecondaryKey)
	assert.Len(t, m.Live(now, now), 2)
}
