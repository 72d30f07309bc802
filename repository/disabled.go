package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var errStoreDisabled = errors.New("counter store is not configured")

// DisabledRateWindow stands in when no store is configured. Slide fails,
// which the limiter translates into fail-open with the full quota.
type DisabledRateWindow struct{}

func (DisabledRateWindow) Slide(ctx context.Context, prefix string, identifier string, window time.Duration) (int64, error) {
	return 0, errStoreDisabled
}

func (DisabledRateWindow) SetBlock(ctx context.Context, prefix string, identifier string, duration time.Duration) error {
	return nil
}

func (DisabledRateWindow) BlockTTL(ctx context.Context, prefix string, identifier string) (time.Duration, bool, error) {
	return 0, false, nil
}

// DisabledCache turns every lookup into a miss and every write into a no-op.
type DisabledCache struct{}

func (DisabledCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (DisabledCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (DisabledCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	return 0, nil
}
