package assembly

import (
	"net/http"

	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/admission"
	"tournament-guard-service/api"
	"tournament-guard-service/botdetect"
	"tournament-guard-service/conf"
	"tournament-guard-service/db"
	"tournament-guard-service/domain"
	"tournament-guard-service/middleware"
	"tournament-guard-service/redisx"
	"tournament-guard-service/repository"
	"tournament-guard-service/request"
	"tournament-guard-service/service"
)

const (
	authPrefix         = "auth"
	otpPrefix          = "otp"
	registrationPrefix = "registration"
	publicReadPrefix   = "read"
	strictBotPrefix    = "bot"
)

type Locator struct {
	logger log.Logger
}

func NewLocator(logger log.Logger) Locator {
	return Locator{
		logger: logger,
	}
}

func (l Locator) Handler(
	config conf.Remote,
	rateLimitStore *redisx.Client,
	cacheStore *redisx.Client,
	queue *admission.Queue,
	gate *db.Gate,
) http.Handler {
	var windowRepo service.RateWindowRepo = repository.DisabledRateWindow{}
	if rateLimitStore != nil {
		windowRepo = repository.NewRateWindow(rateLimitStore)
	}
	rateLimiter := service.NewRateLimiter(windowRepo)

	var cacheRepo service.CacheRepo = repository.DisabledCache{}
	if cacheStore != nil {
		cacheRepo = repository.NewCache(cacheStore, config.Caching.GetScanBatchSize())
	}
	cacheAside := service.NewCacheAside(cacheRepo, config.Caching.GetDefaultTtl())

	detector := botdetect.NewClassifier()

	status := guardStatus{
		rateLimitStore: rateLimitStore,
		cacheStore:     cacheStore,
		queue:          queue,
	}
	var pinger api.Pinger
	if gate != nil {
		pinger = gate
	}
	router := api.SetupRoutes(api.NewHandlers(status, cacheAside, pinger, l.logger))

	// path prefixes mirror the endpoint classes of the protected
	// application; the ops surface is exempt so it stays reachable
	// during the incidents it observes
	policies := middleware.Policies{
		ExemptPrefixes: []string{"/health", "/internal"},
		Endpoint: []middleware.EndpointPolicy{
			{PathPrefix: "/auth", Config: policyConfig(authPrefix, config.RateLimits.GetAuth())},
			{PathPrefix: "/otp", Config: policyConfig(otpPrefix, config.RateLimits.GetOtpSend())},
			{PathPrefix: "/registration", Config: policyConfig(registrationPrefix, config.RateLimits.GetRegistration())},
		},
		Default: policyConfig(publicReadPrefix, config.RateLimits.GetPublicRead()),
		Strict:  policyConfig(strictBotPrefix, config.RateLimits.GetStrictBot()),
	}

	handler := middleware.Chain(
		routerHandler(router),
		middleware.RequestId(),
		middleware.Logger(l.logger, config.Logging.RequestLogEnable),
		middleware.ErrorHandler(l.logger),
		middleware.RateLimit(rateLimiter, detector, policies),
	)

	return middleware.Entrypoint(
		config.Http.MaxRequestBodySizeInMb*1024*1024, //nolint:gomnd
		handler,
		l.logger,
	)
}

func routerHandler(router http.Handler) middleware.Handler {
	return middleware.HandlerFunc(func(ctx *request.Context) error {
		router.ServeHTTP(ctx.ResponseWriter(), ctx.Request())
		return nil
	})
}

func policyConfig(prefix string, limit conf.RateLimit) domain.RateLimitConfig {
	return domain.RateLimitConfig{
		Prefix:               prefix,
		MaxRequests:          limit.MaxRequests,
		WindowSeconds:        limit.WindowInSec,
		BlockDurationSeconds: limit.BlockDurationInSec,
	}
}

type guardStatus struct {
	rateLimitStore *redisx.Client
	cacheStore     *redisx.Client
	queue          *admission.Queue
}

func (s guardStatus) Status() domain.GuardStatus {
	return domain.GuardStatus{
		RateLimitStore:    storeState(s.rateLimitStore),
		CacheStore:        storeState(s.cacheStore),
		AdmissionCapacity: s.queue.Capacity(),
		AdmissionActive:   s.queue.Active(),
		AdmissionQueued:   s.queue.Queued(),
	}
}

func storeState(store *redisx.Client) string {
	if store == nil {
		return "disabled"
	}
	return store.State().String()
}
