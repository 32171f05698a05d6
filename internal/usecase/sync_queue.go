package usecase

import (
	"sync"

	"github.com/panjf2000/ants/v2"
)

// syncQueue runs gateway submissions on a shared worker pool while keeping
// strict FIFO order per key. One key never has two jobs in flight, so a
// recompute-then-sync cycle for a player cannot interleave with another for
// the same player.
type syncQueue struct {
	pool *ants.Pool

	mu      sync.Mutex
	pending map[string][]func()
	active  map[string]bool
	closed  bool

	wg sync.WaitGroup
}

func newSyncQueue(workers int) (*syncQueue, error) {
	if workers < 1 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &syncQueue{
		pool:    pool,
		pending: make(map[string][]func()),
		active:  make(map[string]bool),
	}, nil
}

// Enqueue appends job to the key's FIFO queue and starts a drain worker for
// the key if none is running. Jobs enqueued after Close are dropped.
func (q *syncQueue) Enqueue(key string, job func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.wg.Add(1)
	q.pending[key] = append(q.pending[key], job)
	if q.active[key] {
		q.mu.Unlock()
		return
	}
	q.active[key] = true
	q.mu.Unlock()

	if err := q.pool.Submit(func() { q.drain(key) }); err != nil {
		// Pool rejected the task (released or overloaded); drain inline so
		// the mutation is not lost.
		q.drain(key)
	}
}

func (q *syncQueue) drain(key string) {
	for {
		q.mu.Lock()
		jobs := q.pending[key]
		if len(jobs) == 0 {
			q.active[key] = false
			delete(q.pending, key)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[key] = jobs[1:]
		q.mu.Unlock()

		job()
		q.wg.Done()
	}
}

// Wait blocks until every job enqueued so far has finished.
func (q *syncQueue) Wait() {
	q.wg.Wait()
}

// Close stops accepting jobs, waits for in-flight ones and releases the pool.
func (q *syncQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	q.pool.Release()
}
