package domain

import (
	"github.com/pkg/errors"
)

var (
	// ErrResourceSaturated is returned when a connection admission ticket
	// times out before a slot frees up. Callers map it to a retryable
	// response, never to a generic server error.
	ErrResourceSaturated = errors.New("resource saturated")
)
