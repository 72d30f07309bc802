package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/txix-open/isp-kit/json"
	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/api"
	"tournament-guard-service/domain"
)

type stubStatus struct {
	status domain.GuardStatus
}

func (s stubStatus) Status() domain.GuardStatus {
	return s.status
}

type stubInvalidator struct {
	lastPattern string
	count       int
}

func (s *stubInvalidator) InvalidatePattern(ctx context.Context, pattern string) int {
	s.lastPattern = pattern
	return s.count
}

func newRouter(t *testing.T, status domain.GuardStatus, invalidator *stubInvalidator) http.Handler {
	logger, err := log.New(log.WithLevel(log.FatalLevel))
	require.NoError(t, err)
	return api.SetupRoutes(api.NewHandlers(stubStatus{status: status}, invalidator, nil, logger))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	router := newRouter(t, domain.GuardStatus{}, &stubInvalidator{})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	require.Equal(http.StatusOK, recorder.Code)
}

func TestGuardStatus(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	status := domain.GuardStatus{
		RateLimitStore:    "connected",
		CacheStore:        "disabled",
		AdmissionCapacity: 3,
		AdmissionActive:   2,
		AdmissionQueued:   1,
	}
	router := newRouter(t, status, &stubInvalidator{})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/internal/guard/status", nil))

	require.Equal(http.StatusOK, recorder.Code)
	result := domain.GuardStatus{}
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(status, result)
}

func TestInvalidateCache(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	invalidator := &stubInvalidator{count: 2}
	router := newRouter(t, domain.GuardStatus{}, invalidator)

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"pattern": "tournaments:*"}`)
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/internal/cache/invalidate", body))

	require.Equal(http.StatusOK, recorder.Code)
	require.Equal("tournaments:*", invalidator.lastPattern)
	require.JSONEq(`{"count": 2}`, recorder.Body.String())
}

type contextCapturingLogger struct {
	mu      sync.Mutex
	lastCtx context.Context
}

func (l *contextCapturingLogger) Fatal(ctx context.Context, message any, fields ...log.Field) {}

func (l *contextCapturingLogger) Error(ctx context.Context, message any, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCtx = ctx
}

func (l *contextCapturingLogger) Warn(ctx context.Context, message any, fields ...log.Field) {}

func (l *contextCapturingLogger) Info(ctx context.Context, message any, fields ...log.Field) {}

func (l *contextCapturingLogger) Debug(ctx context.Context, message any, fields ...log.Field) {}

func (l *contextCapturingLogger) last() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCtx
}

type failingWriter struct {
	header http.Header
}

func (w *failingWriter) Header() http.Header {
	return w.header
}

func (w *failingWriter) WriteHeader(statusCode int) {}

func (w *failingWriter) Write(data []byte) (int, error) {
	return 0, errors.New("client went away")
}

type requestMarker struct{}

func TestEncodeFailureIsLoggedWithRequestContext(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	logger := &contextCapturingLogger{}
	handlers := api.NewHandlers(stubStatus{}, &stubInvalidator{}, nil, logger)

	ctx := context.WithValue(context.Background(), requestMarker{}, "marker")
	req := httptest.NewRequest("GET", "/health", nil).WithContext(ctx)
	handlers.Health(&failingWriter{header: http.Header{}}, req)

	require.NotNil(logger.last())
	require.Equal("marker", logger.last().Value(requestMarker{}))
}

func TestInvalidateCacheRequiresPattern(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	router := newRouter(t, domain.GuardStatus{}, &stubInvalidator{})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/internal/cache/invalidate", strings.NewReader(`{}`)))

	require.Equal(http.StatusBadRequest, recorder.Code)
}
