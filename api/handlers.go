package api

import (
	"context"
	"net/http"

	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/domain"
)

type StatusProvider interface {
	Status() domain.GuardStatus
}

type Invalidator interface {
	InvalidatePattern(ctx context.Context, pattern string) int
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type invalidateRequest struct {
	Pattern string `json:"pattern"`
}

type invalidateResponse struct {
	Count int `json:"count"`
}

type Handlers struct {
	status      StatusProvider
	invalidator Invalidator
	database    Pinger
	logger      log.Logger
}

func NewHandlers(status StatusProvider, invalidator Invalidator, database Pinger, logger log.Logger) Handlers {
	return Handlers{
		status:      status,
		invalidator: invalidator,
		database:    database,
		logger:      logger,
	}
}

func (h Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.database != nil {
		err := h.database.Ping(r.Context())
		if err != nil {
			h.writeJson(r.Context(), w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	h.writeJson(r.Context(), w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h Handlers) GuardStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJson(r.Context(), w, http.StatusOK, h.status.Status())
}

func (h Handlers) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	body := invalidateRequest{}
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil || body.Pattern == "" {
		h.writeJson(r.Context(), w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "INVALID_REQUEST",
			"message": "pattern is required",
		})
		return
	}

	count := h.invalidator.InvalidatePattern(r.Context(), body.Pattern)
	h.writeJson(r.Context(), w, http.StatusOK, invalidateResponse{Count: count})
}

func (h Handlers) writeJson(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		h.logger.Error(ctx, err)
	}
}
