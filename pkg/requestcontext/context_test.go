package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"concord/pkg/domain"
)

func TestCallerID(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		caller := domain.NewIdentity()
		ctx := WithCallerID(context.Background(), caller)
		assert.Equal(t, caller, CallerID(ctx))
	})

	t.Run("unauthenticated context yields the null identity", func(t *testing.T) {
		assert.Equal(t, domain.NilIdentity, CallerID(context.Background()))
	})
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestNow(t *testing.T) {
	t.Run("returns injected time", func(t *testing.T) {
		at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, at, Now(WithTime(context.Background(), at)))
	})

	t.Run("falls back to wall clock", func(t *testing.T) {
		assert.WithinDuration(t, time.Now(), Now(context.Background()), time.Second)
	})
}
