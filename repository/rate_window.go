package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"tournament-guard-service/redisx"
)

// RateWindow stores one timestamped member per request in a sorted set
// keyed by (prefix, identifier). The window key expires one second after
// the window itself so idle identifiers clean themselves up.
type RateWindow struct {
	cli *redisx.Client
}

func NewRateWindow(cli *redisx.Client) RateWindow {
	return RateWindow{
		cli: cli,
	}
}

// Slide trims expired members, counts the rest and records the current
// request, all in one transactional round trip. Concurrent callers on the
// same identifier cannot race past the limit between count and insert.
// The returned count is taken before the insert.
func (r RateWindow) Slide(ctx context.Context, prefix string, identifier string, window time.Duration) (int64, error) {
	key := r.windowKey(prefix, identifier)
	now := time.Now().UnixMilli()
	member := fmt.Sprintf("%d:%s", now, uuid.NewString())

	var count *redis.IntCmd
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		_, err := cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(now-window.Milliseconds(), 10))
			count = p.ZCard(ctx, key)
			p.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
			p.Expire(ctx, key, window+time.Second)
			return nil
		})
		return err
	})
	if err != nil {
		return 0, errors.WithMessage(err, "tx pipelined slide")
	}

	return count.Val(), nil
}

// SetBlock marks the identifier as blocked for the given duration.
func (r RateWindow) SetBlock(ctx context.Context, prefix string, identifier string, duration time.Duration) error {
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		return cli.Set(ctx, r.blockKey(prefix, identifier), "1", duration).Err()
	})
	if err != nil {
		return errors.WithMessage(err, "set block marker")
	}
	return nil
}

// BlockTTL reports whether a block marker is present and how long it lives.
func (r RateWindow) BlockTTL(ctx context.Context, prefix string, identifier string) (time.Duration, bool, error) {
	var ttl time.Duration
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		var err error
		ttl, err = cli.TTL(ctx, r.blockKey(prefix, identifier)).Result()
		return err
	})
	if err != nil {
		return 0, false, errors.WithMessage(err, "block marker ttl")
	}

	// TTL returns negative values for a missing key or a key without expiry.
	return ttl, ttl > 0, nil
}

func (r RateWindow) windowKey(prefix string, identifier string) string {
	return fmt.Sprintf("rate:%s:%s", prefix, identifier)
}

func (r RateWindow) blockKey(prefix string, identifier string) string {
	return fmt.Sprintf("rate:block:%s:%s", prefix, identifier)
}
