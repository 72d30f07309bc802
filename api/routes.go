package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes wires the guard's own surface: liveness plus the internal
// ops endpoints for observing the guard and driving cache invalidation.
// Business routes of the protected application never live here.
func SetupRoutes(handlers Handlers) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	internal := router.PathPrefix("/internal").Subrouter()
	internal.HandleFunc("/guard/status", handlers.GuardStatus).Methods(http.MethodGet)
	internal.HandleFunc("/cache/invalidate", handlers.InvalidateCache).Methods(http.MethodPost)

	return router
}
