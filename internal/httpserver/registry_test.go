package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akosarev/storefront/internal/api"
	"github.com/akosarev/storefront/internal/cart"
	"github.com/akosarev/storefront/internal/notify"
)

func countingFactory(built *int) StoreFactory {
	return func(string, api.TokenSource) *cart.Store {
		*built++
		return cart.NewStore(nil, cart.Deps{Notifier: &notify.Recorder{}})
	}
}

func TestRegistryReusesStorePerUser(t *testing.T) {
	t.Parallel()

	built := 0
	r := NewRegistry(countingFactory(&built))

	st1 := r.For("u1", "tok-1")
	st2 := r.For("u1", "tok-2")

	assert.Same(t, st1, st2)
	assert.Equal(t, 1, built)
}

func TestRegistryForwardsLatestToken(t *testing.T) {
	t.Parallel()

	var tokens api.TokenSource
	r := NewRegistry(func(_ string, ts api.TokenSource) *cart.Store {
		tokens = ts
		return cart.NewStore(nil, cart.Deps{Notifier: &notify.Recorder{}})
	})

	r.For("u1", "first")
	r.For("u1", "second")

	tok, err := tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	built := 0
	r := NewRegistry(countingFactory(&built))

	st1 := r.For("idle", "tok")
	r.For("active", "tok")

	// age the idle session past the TTL and force the next sweep
	r.mu.Lock()
	r.sessions["idle"].lastSeen = time.Now().Add(-sessionTTL - time.Minute)
	r.lastSweep = time.Time{}
	r.mu.Unlock()

	r.For("active", "tok")

	r.mu.Lock()
	_, idleKept := r.sessions["idle"]
	_, activeKept := r.sessions["active"]
	r.mu.Unlock()
	assert.False(t, idleKept)
	assert.True(t, activeKept)

	st2 := r.For("idle", "tok")
	assert.NotSame(t, st1, st2, "an evicted session gets a fresh store")
	assert.Equal(t, 3, built)
}
