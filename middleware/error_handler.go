package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/domain"
	"tournament-guard-service/httperrors"
	"tournament-guard-service/request"
)

type HttpError interface {
	WriteError(w http.ResponseWriter) error
}

func ErrorHandler(logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)
			if err == nil {
				return nil
			}

			logger.Error(ctx.Context(), err)

			httpErr, ok := err.(HttpError)
			if ok {
				return httpErr.WriteError(ctx.ResponseWriter())
			}

			// saturation is backpressure, not an internal failure
			if errors.Is(err, domain.ErrResourceSaturated) {
				return httperrors.
					New(http.StatusServiceUnavailable, httperrors.CodeResourceSaturated, "service busy, retry shortly", err).
					WriteError(ctx.ResponseWriter())
			}

			return httperrors.
				New(http.StatusInternalServerError, httperrors.CodeInternal, "internal service error", err).
				WriteError(ctx.ResponseWriter())
		})
	}
}
