package service

import (
	"context"
	"time"
)

const (
	backgroundWriteTimeout = 3 * time.Second
)

type CacheRepo interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// CacheAside shields expensive read paths behind the shared store.
// Every operation degrades to a miss or a no-op when the store is down;
// an unavailable cache must never surface as an error to the caller.
type CacheAside struct {
	repo       CacheRepo
	defaultTtl time.Duration
}

func NewCacheAside(repo CacheRepo, defaultTtl time.Duration) CacheAside {
	return CacheAside{
		repo:       repo,
		defaultTtl: defaultTtl,
	}
}

func (s CacheAside) Get(ctx context.Context, key string) ([]byte, bool) {
	value, found, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	return value, found
}

func (s CacheAside) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTtl
	}
	_ = s.repo.Set(ctx, key, value, ttl) // best effort
}

// GetOrSet returns the cached payload when present, otherwise invokes
// compute and returns its result. The store write happens in the
// background on a detached context; the caller never waits on it.
// Two concurrent misses may both compute, last write wins.
func (s CacheAside) GetOrSet(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if value, found := s.Get(ctx, key); found {
		return value, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), backgroundWriteTimeout)
		defer cancel()
		s.Set(writeCtx, key, value, ttl)
	}()

	return value, nil
}

// InvalidatePattern removes every entry matching the glob pattern and
// returns the number of removed keys. Invalidation is best effort: on
// store failure the entries' own TTL remains the staleness backstop.
func (s CacheAside) InvalidatePattern(ctx context.Context, pattern string) int {
	count, _ := s.repo.DeletePattern(ctx, pattern) // best effort
	return int(count)
}
