package domain

import (
	"github.com/pkg/errors"
)

// RateLimitConfig describes one limiter policy. Prefix namespaces the
// limiter instance so different endpoint classes never share windows.
// BlockDurationSeconds == 0 disables escalation.
type RateLimitConfig struct {
	Prefix               string
	MaxRequests          int
	WindowSeconds        int
	BlockDurationSeconds int
}

func (c RateLimitConfig) Validate() error {
	if c.Prefix == "" {
		return errors.New("prefix is required")
	}
	if c.MaxRequests <= 0 {
		return errors.New("maxRequests must be positive")
	}
	if c.WindowSeconds <= 0 {
		return errors.New("windowSeconds must be positive")
	}
	if c.BlockDurationSeconds < 0 {
		return errors.New("blockDurationSeconds must not be negative")
	}
	return nil
}

type RateLimitResult struct {
	Allowed        bool
	Remaining      int
	ResetInSeconds int
	Blocked        bool
}
