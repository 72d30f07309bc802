package service

import (
	"context"
	"math"
	"time"

	"tournament-guard-service/domain"
)

type RateWindowRepo interface {
	Slide(ctx context.Context, prefix string, identifier string, window time.Duration) (int64, error)
	SetBlock(ctx context.Context, prefix string, identifier string, duration time.Duration) error
	BlockTTL(ctx context.Context, prefix string, identifier string) (time.Duration, bool, error)
}

// RateLimiter enforces sliding-window limits shared by all instances
// through the counter store. Store failures never surface to the caller:
// the limiter fails open and returns the full quota. Failure logging is
// owned by the store client and happens once per outage, not per request.
type RateLimiter struct {
	repo RateWindowRepo
}

func NewRateLimiter(repo RateWindowRepo) RateLimiter {
	return RateLimiter{
		repo: repo,
	}
}

func (s RateLimiter) Check(ctx context.Context, identifier string, config domain.RateLimitConfig) domain.RateLimitResult {
	if config.BlockDurationSeconds > 0 {
		ttl, blocked, err := s.repo.BlockTTL(ctx, config.Prefix, identifier)
		if err != nil {
			return failOpen(config)
		}
		if blocked {
			return domain.RateLimitResult{
				Allowed:        false,
				Remaining:      0,
				ResetInSeconds: int(math.Ceil(ttl.Seconds())),
				Blocked:        true,
			}
		}
	}

	window := time.Duration(config.WindowSeconds) * time.Second
	count, err := s.repo.Slide(ctx, config.Prefix, identifier, window)
	if err != nil {
		return failOpen(config)
	}

	if count >= int64(config.MaxRequests) {
		if config.BlockDurationSeconds > 0 {
			blockDuration := time.Duration(config.BlockDurationSeconds) * time.Second
			_ = s.repo.SetBlock(ctx, config.Prefix, identifier, blockDuration) // best effort
		}
		return domain.RateLimitResult{
			Allowed:        false,
			Remaining:      0,
			ResetInSeconds: config.WindowSeconds,
		}
	}

	return domain.RateLimitResult{
		Allowed:        true,
		Remaining:      config.MaxRequests - int(count) - 1,
		ResetInSeconds: config.WindowSeconds,
	}
}

func failOpen(config domain.RateLimitConfig) domain.RateLimitResult {
	return domain.RateLimitResult{
		Allowed:        true,
		Remaining:      config.MaxRequests,
		ResetInSeconds: config.WindowSeconds,
	}
}
