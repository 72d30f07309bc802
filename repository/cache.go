package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"tournament-guard-service/redisx"
)

type Cache struct {
	cli       *redisx.Client
	scanBatch int64
}

func NewCache(cli *redisx.Client, scanBatch int64) Cache {
	return Cache{
		cli:       cli,
		scanBatch: scanBatch,
	}
}

// Get returns the payload for key. A missing or expired key is a regular
// miss, not an error.
func (r Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		data, err := cli.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		value = data
		found = true
		return nil
	})
	if err != nil {
		return nil, false, errors.WithMessage(err, "get")
	}
	return value, found, nil
}

func (r Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		return cli.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		return errors.WithMessage(err, "set")
	}
	return nil
}

// DeletePattern walks the keyspace with SCAN in bounded batches and deletes
// every key matching the glob pattern. A single blocking full-keyspace
// operation is never issued.
func (r Cache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	deleted := int64(0)
	err := r.cli.Do(ctx, func(ctx context.Context, cli redis.UniversalClient) error {
		cursor := uint64(0)
		for {
			keys, next, err := cli.Scan(ctx, cursor, pattern, r.scanBatch).Result()
			if err != nil {
				return errors.WithMessage(err, "scan")
			}
			if len(keys) > 0 {
				count, err := cli.Del(ctx, keys...).Result()
				if err != nil {
					return errors.WithMessage(err, "del")
				}
				deleted += count
			}
			if next == 0 {
				return nil
			}
			cursor = next
		}
	})
	if err != nil {
		return deleted, errors.WithMessage(err, "delete pattern")
	}
	return deleted, nil
}
