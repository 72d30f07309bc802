// Package admission bounds concurrent use of a scarce per-process
// resource, queueing excess requests in arrival order with a hard wait
// timeout. The queue is deliberately local to one process: the protected
// resource (the database driver's connection pool) is itself per-process,
// each instance being configured with its share of the global ceiling.
package admission

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"tournament-guard-service/domain"
)

type ticket struct {
	grant   chan struct{}
	granted bool
}

type Queue struct {
	mu          sync.Mutex
	capacity    int
	active      int
	waitTimeout time.Duration
	waiters     *list.List
}

func NewQueue(capacity int, waitTimeout time.Duration) (*Queue, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be positive")
	}
	if waitTimeout <= 0 {
		return nil, errors.New("wait timeout must be positive")
	}
	return &Queue{
		capacity:    capacity,
		waitTimeout: waitTimeout,
		waiters:     list.New(),
	}, nil
}

// Acquire grants a slot immediately when under capacity, otherwise the
// caller is queued and suspended until a holder releases a slot or the
// wait timeout elapses, whichever happens first. A timed out wait returns
// domain.ErrResourceSaturated and leaves the active count untouched.
func (q *Queue) Acquire(ctx context.Context) error {
	q.mu.Lock()
	if q.active < q.capacity {
		q.active++
		q.mu.Unlock()
		return nil
	}
	t := &ticket{grant: make(chan struct{})}
	elem := q.waiters.PushBack(t)
	q.mu.Unlock()

	timer := time.NewTimer(q.waitTimeout)
	defer timer.Stop()

	select {
	case <-t.grant:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if t.granted {
		// a release raced the deadline; the grant stands
		return nil
	}
	q.waiters.Remove(elem)
	if err := ctx.Err(); err != nil {
		return errors.WithMessage(err, "wait for connection slot")
	}
	return domain.ErrResourceSaturated
}

// Release hands the freed slot to the oldest queued ticket, if any,
// keeping the active count incremented; otherwise the slot is returned
// to the pool. Exactly one ticket resolves per freed slot. Never blocks.
func (q *Queue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.waiters.Front()
	if front != nil {
		t := q.waiters.Remove(front).(*ticket)
		t.granted = true
		close(t.grant)
		return
	}
	if q.active > 0 {
		q.active--
	}
}

func (q *Queue) Capacity() int {
	return q.capacity
}

func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

func (q *Queue) Queued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiters.Len()
}
