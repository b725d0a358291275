package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concord/pkg/domain"
	audit "concord/pkg/platform/audit"
)

func appendEvents(t *testing.T, s *InMemoryStore, n int) []audit.Event {
	t.Helper()
	events := make([]audit.Event, n)
	for i := range events {
		events[i] = audit.Event{
			Timestamp: time.Now(),
			Action:    fmt.Sprintf("action_%d", i),
			Identity:  domain.NewIdentity(),
			ActorID:   domain.NewIdentity(),
		}
		require.NoError(t, s.Append(context.Background(), events[i]))
	}
	return events
}

func TestInMemoryStore_PreservesCommitOrder(t *testing.T) {
	s := NewInMemoryStore()
	want := appendEvents(t, s, 5)

	got, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInMemoryStore_ListRecent(t *testing.T) {
	s := NewInMemoryStore()
	want := appendEvents(t, s, 5)

	t.Run("returns the tail in commit order", func(t *testing.T) {
		got, err := s.ListRecent(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, want[3:], got)
	})

	t.Run("limit above length returns everything", func(t *testing.T) {
		got, err := s.ListRecent(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestInMemoryStore_ListByIdentity(t *testing.T) {
	s := NewInMemoryStore()
	member := domain.NewIdentity()
	actor := domain.NewIdentity()

	require.NoError(t, s.Append(context.Background(), audit.Event{Action: "council_added", Identity: member, ActorID: actor}))
	appendEvents(t, s, 3)
	require.NoError(t, s.Append(context.Background(), audit.Event{Action: "council_removed", Identity: member, ActorID: actor}))

	got, err := s.ListByIdentity(context.Background(), member)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "council_added", got[0].Action)
	assert.Equal(t, "council_removed", got[1].Action)
}

func TestInMemoryStore_ListAllReturnsCopy(t *testing.T) {
	s := NewInMemoryStore()
	appendEvents(t, s, 2)

	got, err := s.ListAll(context.Background())
	require.NoError(t, err)
	got[0].Action = "tampered"

	fresh, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", fresh[0].Action)
}

func TestInMemoryStore_Clear(t *testing.T) {
	s := NewInMemoryStore()
	appendEvents(t, s, 3)

	s.Clear()

	got, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
