package bridge_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/bridge"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

func newRedis(t *testing.T) goredislib.UniversalClient {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestLocalGuard_CollapsesConcurrentCalls(t *testing.T) {
	g := bridge.NewLocalGuard()

	var calls atomic.Int32

	release := make(chan struct{})
	results := make(chan ledger.Receipt, 2)

	for range 2 {
		go func() {
			r, _ := g.Do(context.Background(), "k", func(context.Context) (ledger.Receipt, error) {
				calls.Add(1)
				<-release

				return ledger.Receipt{Hash: "0x1"}, nil
			})
			results <- r
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Equal(t, "0x1", (<-results).Hash)
	assert.Equal(t, "0x1", (<-results).Hash)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRedisGuard_RunsAndReleases(t *testing.T) {
	g := bridge.NewRedisGuard(newRedis(t), time.Minute)

	for range 2 {
		r, err := g.Do(context.Background(), "register_asset:1", func(context.Context) (ledger.Receipt, error) {
			return ledger.Receipt{Hash: "0xabc"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "0xabc", r.Hash)
	}
}

func TestRedisGuard_HeldElsewhereFailsFast(t *testing.T) {
	client := newRedis(t)
	g := bridge.NewRedisGuard(client, time.Minute)

	// another instance holds the submit lock
	other := redsync.New(goredis.NewPool(client)).NewMutex("titledeed:submit:register_asset:2", redsync.WithExpiry(time.Minute))
	require.NoError(t, other.Lock())

	called := false

	_, err := g.Do(context.Background(), "register_asset:2", func(context.Context) (ledger.Receipt, error) {
		called = true
		return ledger.Receipt{}, nil
	})
	require.True(t, errors.Is(err, apperr.ErrConcurrency))
	assert.False(t, called)

	_, err = other.Unlock()
	require.NoError(t, err)
}
