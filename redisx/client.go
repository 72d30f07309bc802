package redisx

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/log"
	"tournament-guard-service/conf"
)

const (
	defaultOperationTimeout = 3 * time.Second
)

// Client owns a single connection to the shared counter store.
// Every remote operation goes through Do, which enforces a short timeout
// and drives the connection state machine: Connecting until the first
// operation settles, then Connected or Disconnected. Transitions are
// logged exactly once; repeated failures inside one outage are silent,
// so an outage cannot flood the log.
type Client struct {
	name      string
	cli       redis.UniversalClient
	logger    log.Logger
	opTimeout time.Duration
	state     int32
}

func NewClient(name string, config conf.Redis, logger log.Logger) *Client {
	var cli redis.UniversalClient
	if config.Sentinel != nil {
		cli = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       config.Sentinel.MasterName,
			SentinelAddrs:    config.Sentinel.Addresses,
			SentinelUsername: config.Sentinel.Username,
			SentinelPassword: config.Sentinel.Password,
			Username:         config.Username,
			Password:         config.Password,
			DialTimeout:      defaultOperationTimeout,
			ReadTimeout:      defaultOperationTimeout,
			WriteTimeout:     defaultOperationTimeout,
		})
	} else {
		cli = redis.NewClient(&redis.Options{
			Addr:         config.Address,
			Username:     config.Username,
			Password:     config.Password,
			DialTimeout:  defaultOperationTimeout,
			ReadTimeout:  defaultOperationTimeout,
			WriteTimeout: defaultOperationTimeout,
		})
	}
	return Wrap(name, cli, logger)
}

// Wrap builds a Client around an existing connection. Used by tests.
func Wrap(name string, cli redis.UniversalClient, logger log.Logger) *Client {
	return &Client{
		name:      name,
		cli:       cli,
		logger:    logger,
		opTimeout: defaultOperationTimeout,
		state:     int32(StateConnecting),
	}
}

// Do runs fn against the store with the operation timeout applied.
// fn must treat redis.Nil as a domain outcome and not return it as an error.
func (c *Client) Do(ctx context.Context, fn func(ctx context.Context, cli redis.UniversalClient) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	err := fn(ctx, c.cli)
	if err != nil && !errors.Is(err, redis.Nil) {
		// only the transition into the outage is logged
		if c.swap(StateDisconnected) != StateDisconnected {
			c.logger.Error(ctx, errors.WithMessagef(err, "redis store '%s': unavailable, failing open", c.name))
		}
		return err
	}

	if c.swap(StateConnected) != StateConnected {
		c.logger.Info(ctx, "redis store: connected", log.String("store", c.name))
	}
	return err
}

func (c *Client) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Client) Healthy() bool {
	return c.State() == StateConnected
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) swap(new State) State {
	return State(atomic.SwapInt32(&c.state, int32(new)))
}
