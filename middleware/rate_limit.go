package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"tournament-guard-service/botdetect"
	"tournament-guard-service/domain"
	"tournament-guard-service/httperrors"
	"tournament-guard-service/request"
)

type RateLimiter interface {
	Check(ctx context.Context, identifier string, config domain.RateLimitConfig) domain.RateLimitResult
}

type BotDetector interface {
	Classify(request *http.Request) botdetect.Result
}

// EndpointPolicy binds one endpoint class, addressed by path prefix,
// to its limiter config.
type EndpointPolicy struct {
	PathPrefix string
	Config     domain.RateLimitConfig
}

// Policies is the limiter policy table. Endpoint entries are checked in
// order, first matching prefix wins, everything else falls back to
// Default. Paths under ExemptPrefixes bypass the limiter entirely so
// the ops surface stays reachable during the incidents it observes.
type Policies struct {
	ExemptPrefixes []string
	Endpoint       []EndpointPolicy
	Default        domain.RateLimitConfig
	Strict         domain.RateLimitConfig
}

func (p Policies) exempt(endpoint string) bool {
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}

func (p Policies) configFor(endpoint string) domain.RateLimitConfig {
	for _, policy := range p.Endpoint {
		if strings.HasPrefix(endpoint, policy.PathPrefix) {
			return policy.Config
		}
	}
	return p.Default
}

// RateLimit gates the request on the shared sliding window keyed by
// client IP, under the policy selected for the endpoint class. When the
// detector reports a likely bot the Strict config applies instead.
// Denials carry the full 429 contract: Retry-After, X-RateLimit-*
// headers and a structured body.
func RateLimit(limiter RateLimiter, detector BotDetector, policies Policies) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			if policies.exempt(ctx.Endpoint()) {
				return next.Handle(ctx)
			}

			appliedConfig := policies.configFor(ctx.Endpoint())
			if detector != nil {
				if verdict := detector.Classify(ctx.Request()); verdict.IsLikelyBot {
					appliedConfig = policies.Strict
				}
			}

			identifier := ctx.ClientIP()
			result := limiter.Check(ctx.Context(), identifier, appliedConfig)
			if result.Allowed {
				return next.Handle(ctx)
			}

			message := fmt.Sprintf("too many requests, retry after %d seconds", result.ResetInSeconds)
			if result.Blocked {
				message = fmt.Sprintf("temporarily blocked due to repeated requests, retry after %d seconds", result.ResetInSeconds)
			}

			return httperrors.New(
				http.StatusTooManyRequests,
				httperrors.CodeRateLimited,
				message,
				errors.Errorf("rate limit: limit reached for '%s' in '%s'", identifier, appliedConfig.Prefix),
			).
				WithRetryAfter(result.ResetInSeconds).
				WithHeader("Retry-After", strconv.Itoa(result.ResetInSeconds)).
				WithHeader("X-RateLimit-Limit", strconv.Itoa(appliedConfig.MaxRequests)).
				WithHeader("X-RateLimit-Remaining", strconv.Itoa(result.Remaining)).
				WithHeader("X-RateLimit-Reset", strconv.Itoa(result.ResetInSeconds))
		})
	}
}
