// Package db funnels every relational store operation through the
// connection admission queue so the driver's pool ceiling is never
// exceeded, even when many requests are in flight.
package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"tournament-guard-service/admission"
)

type Gate struct {
	pool      *pgxpool.Pool
	admission *admission.Queue
}

// NewGate opens a pool sized exactly to the admission capacity. The gate
// is unaware of what callers do with the acquired connection.
func NewGate(ctx context.Context, connectionUrl string, queue *admission.Queue) (*Gate, error) {
	config, err := pgxpool.ParseConfig(connectionUrl)
	if err != nil {
		return nil, errors.WithMessage(err, "parse connection url")
	}
	config.MaxConns = int32(queue.Capacity()) // nolint:gosec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.WithMessage(err, "new pool")
	}

	return &Gate{
		pool:      pool,
		admission: queue,
	}, nil
}

// WithConn runs fn on a pooled connection under an admission ticket.
// The ticket is held for the whole duration of fn; release order is
// connection first, ticket last.
func (g *Gate) WithConn(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	err := g.admission.Acquire(ctx)
	if err != nil {
		return errors.WithMessage(err, "acquire admission ticket")
	}
	defer g.admission.Release()

	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return errors.WithMessage(err, "acquire connection")
	}
	defer conn.Release()

	return fn(ctx, conn)
}

func (g *Gate) Ping(ctx context.Context) error {
	return g.WithConn(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.Ping(ctx)
	})
}

func (g *Gate) Close() error {
	g.pool.Close()
	return nil
}
