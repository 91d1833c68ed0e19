package bridge

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/ledger"
)

// Guard keeps two submits for the same operation key from being in flight at once.
type Guard interface {
	Do(ctx context.Context, key string, fn func(context.Context) (ledger.Receipt, error)) (ledger.Receipt, error)
}

// LocalGuard collapses concurrent submits inside one process; callers that
// arrive while a submit is running share its result.
type LocalGuard struct {
	group singleflight.Group
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{}
}

func (g *LocalGuard) Do(ctx context.Context, key string, fn func(context.Context) (ledger.Receipt, error)) (ledger.Receipt, error) {
	v, err, _ := g.group.Do(key, func() (any, error) {
		return fn(ctx)
	})

	r, _ := v.(ledger.Receipt)

	return r, err
}

// RedisGuard extends LocalGuard across instances with a redsync mutex.
// A submit already held elsewhere fails fast with a concurrency error.
type RedisGuard struct {
	local  LocalGuard
	rs     *redsync.Redsync
	expiry time.Duration
}

func NewRedisGuard(client goredislib.UniversalClient, expiry time.Duration) *RedisGuard {
	if expiry <= 0 {
		expiry = time.Minute
	}

	return &RedisGuard{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
	}
}

func (g *RedisGuard) Do(ctx context.Context, key string, fn func(context.Context) (ledger.Receipt, error)) (ledger.Receipt, error) {
	return g.local.Do(ctx, key, func(ctx context.Context) (ledger.Receipt, error) {
		mutex := g.rs.NewMutex("titledeed:submit:"+key,
			redsync.WithExpiry(g.expiry),
			redsync.WithTries(1),
		)

		if err := mutex.LockContext(ctx); err != nil {
			return ledger.Receipt{}, apperr.Concurrency("submit for %s already in flight: %v", key, err)
		}

		defer func() {
			_, _ = mutex.UnlockContext(context.WithoutCancel(ctx))
		}()

		return fn(ctx)
	})
}
