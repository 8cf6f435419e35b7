package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"brandcast/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrRunInProgress = errors.New("a campaign run is already in progress")

const (
	RunLockKey = "campaign:run-lock"
	RunLockTTL = 10 * time.Minute
)

// RunLock serializes campaign runs. TryAcquire never blocks: it returns
// ErrRunInProgress when another run holds the lock.
type RunLock interface {
	TryAcquire(ctx context.Context) (release func(), err error)
}

type localLock struct {
	mu sync.Mutex
}

func NewLocalLock() RunLock {
	return &localLock{}
}

func (l *localLock) TryAcquire(context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	return l.mu.Unlock, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// redisLock adds a shared lease on top of the local guard so replicas using
// the same platform credentials do not interleave container lifecycles.
type redisLock struct {
	local  RunLock
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisLock(client *redis.Client, log *logger.Logger) RunLock {
	return &redisLock{
		local:  NewLocalLock(),
		client: client,
		key:    RunLockKey,
		ttl:    RunLockTTL,
		logger: log,
	}
}

func (l *redisLock) TryAcquire(ctx context.Context) (func(), error) {
	releaseLocal, err := l.local.TryAcquire(ctx)
	if err != nil {
		return nil, err
	}

	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("[RUNLOCK] Redis unavailable, relying on the process lock only: %v", err)
		return releaseLocal, nil
	}
	if !ok {
		releaseLocal()
		return nil, ErrRunInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.Warn("[RUNLOCK] Failed to release redis lock, it expires in %s: %v", l.ttl, err)
		}
		releaseLocal()
	}, nil
}
