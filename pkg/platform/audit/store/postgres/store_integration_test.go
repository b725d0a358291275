package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concord/pkg/domain"
	audit "concord/pkg/platform/audit"
)

// Run with CONCORD_TEST_POSTGRES_URL pointing at a disposable database:
//
//	CONCORD_TEST_POSTGRES_URL=postgres://localhost:5432/concord_test go test ./pkg/platform/audit/store/postgres/
func newTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("CONCORD_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("CONCORD_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, Schema())
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "TRUNCATE registry_audit")
	require.NoError(t, err)

	return New(pool)
}

func TestStore_AppendAndListRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	actor := domain.NewIdentity()
	want := make([]audit.Event, 4)
	for i := range want {
		want[i] = audit.Event{
			Timestamp: time.Now().UTC().Truncate(time.Microsecond),
			Action:    "council_added",
			Identity:  domain.NewIdentity(),
			ActorID:   actor,
			RequestID: "req-it",
		}
		require.NoError(t, s.Append(ctx, want[i]))
	}

	t.Run("tail comes back in commit order", func(t *testing.T) {
		got, err := s.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, want[2].Identity, got[0].Identity)
		assert.Equal(t, want[3].Identity, got[1].Identity)
	})

	t.Run("limit above length returns everything", func(t *testing.T) {
		got, err := s.ListRecent(ctx, 100)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i, event := range got {
			assert.Equal(t, want[i].Identity, event.Identity)
			assert.Equal(t, want[i].ActorID, event.ActorID)
			assert.Equal(t, "council_added", event.Action)
		}
	})
}
