package assembly

import (
	"context"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/app"
	"github.com/txix-open/isp-kit/bootstrap"
	"github.com/txix-open/isp-kit/cluster"
	"github.com/txix-open/isp-kit/http"
	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/admission"
	"tournament-guard-service/conf"
	"tournament-guard-service/db"
	"tournament-guard-service/redisx"
)

// Assembly owns the process-wide singletons of the protection layer:
// the counter store clients, the admission queue and the database gate.
// They are constructed here once per config and handed to all call sites
// by reference; nothing is kept as implicit module-level state.
type Assembly struct {
	boot   *bootstrap.Bootstrap
	server *http.Server
	logger *log.Adapter

	rateLimitStore *redisx.Client
	cacheStore     *redisx.Client
	dbGate         *db.Gate
}

func New(boot *bootstrap.Bootstrap) (*Assembly, error) {
	server := http.NewServer(boot.App.Logger())
	return &Assembly{
		boot:   boot,
		server: server,
		logger: boot.App.Logger(),
	}, nil
}

func (a *Assembly) ReceiveConfig(ctx context.Context, remoteConfig []byte) error {
	var (
		newCfg  conf.Remote
		prevCfg conf.Remote
	)
	err := a.boot.RemoteConfig.Upgrade(remoteConfig, &newCfg, &prevCfg)
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "upgrade remote config"))
	}
	err = newCfg.Validate()
	if err != nil {
		a.logger.Fatal(ctx, errors.WithMessage(err, "invalid remote config"))
	}

	a.logger.SetLevel(newCfg.Logging.LogLevel)

	queue, err := admission.NewQueue(newCfg.Admission.GetCapacity(), newCfg.Admission.GetWaitTimeout())
	if err != nil {
		return errors.WithMessage(err, "new admission queue")
	}

	// rate limiting and caching are independent dependencies on the same
	// store type, each with its own connection and failure state
	var newRateLimitStore *redisx.Client
	var newCacheStore *redisx.Client
	if newCfg.Redis != nil {
		newRateLimitStore = redisx.NewClient("rate-limit", *newCfg.Redis, a.logger)
		newCacheStore = redisx.NewClient("cache", *newCfg.Redis, a.logger)
	}

	var newDbGate *db.Gate
	if newCfg.Database != nil {
		newDbGate, err = db.NewGate(ctx, newCfg.Database.ConnectionUrl, queue)
		if err != nil {
			return errors.WithMessage(err, "new db gate")
		}
		err = newDbGate.Ping(ctx)
		if err != nil {
			return errors.WithMessage(err, "ping db gate")
		}
	}

	locator := NewLocator(a.logger)
	handler := locator.Handler(newCfg, newRateLimitStore, newCacheStore, queue, newDbGate)
	a.server.Upgrade(handler)

	a.closeStores()
	a.rateLimitStore = newRateLimitStore
	a.cacheStore = newCacheStore
	a.dbGate = newDbGate

	return nil
}

func (a *Assembly) Runners() []app.Runner {
	eventHandler := cluster.NewEventHandler().
		RemoteConfigReceiver(a)

	return []app.Runner{
		app.RunnerFunc(func(ctx context.Context) error {
			return a.server.ListenAndServe(a.boot.BindingAddress)
		}),
		app.RunnerFunc(func(ctx context.Context) error {
			return a.boot.ClusterCli.Run(ctx, eventHandler)
		}),
	}
}

func (a *Assembly) Closers() []app.Closer {
	return []app.Closer{
		a.boot.ClusterCli,
		app.CloserFunc(func() error {
			return a.server.Shutdown(context.Background())
		}),
		app.CloserFunc(func() error {
			a.closeStores()
			return nil
		}),
	}
}

func (a *Assembly) closeStores() {
	if a.rateLimitStore != nil {
		_ = a.rateLimitStore.Close()
		a.rateLimitStore = nil
	}
	if a.cacheStore != nil {
		_ = a.cacheStore.Close()
		a.cacheStore = nil
	}
	if a.dbGate != nil {
		_ = a.dbGate.Close()
		a.dbGate = nil
	}
}
