// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/StudioLoomAI/StudioLoom/services/studio/storage"
)

// writeTimeout bounds a single durable write. The store is local and
// embedded; anything slower than this is a real fault worth logging.
const writeTimeout = 10 * time.Second

// queueDepth is the enqueue buffer. Saves are whole-collection blobs
// triggered by human edits, so depth is effectively never reached.
const queueDepth = 256

// writeJob is one pending durable write. The key is captured at save
// time, so a job always lands under the client that issued it even if
// the active client changes before the write drains.
type writeJob struct {
	key   string
	value []byte
}

// writeQueue serializes best-effort durable writes behind the
// synchronous in-memory cache.
//
// Saves stay fire-and-forget for UI responsiveness; callers that need a
// durability point (client switch, shutdown) call Flush. Jobs drain in
// issue order, so the last save to a key is also the last write.
//
// Write failures are logged and counted, never surfaced: a crash
// between the in-memory update and the durable write loses that single
// write, which is the accepted trade-off.
type writeQueue struct {
	store  storage.Store
	logger *slog.Logger

	jobs chan writeJob
	done chan struct{}

	// mu guards pending and closed. pending counts jobs that have been
	// accepted but not yet attempted by the worker; drained is signalled
	// whenever it returns to zero. A plain counter with a condition
	// variable keeps enqueue and Flush safe to call concurrently.
	mu      sync.Mutex
	drained *sync.Cond
	pending int
	closed  bool
}

func newWriteQueue(store storage.Store, logger *slog.Logger) *writeQueue {
	q := &writeQueue{
		store:  store,
		logger: logger,
		jobs:   make(chan writeJob, queueDepth),
		done:   make(chan struct{}),
	}
	q.drained = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// enqueue schedules a durable write. Returns immediately unless the
// buffer is full, which only happens if the store has stalled.
func (q *writeQueue) enqueue(key string, value []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("write dropped, queue closed", "key", key)
		return
	}
	q.pending++
	q.mu.Unlock()

	q.jobs <- writeJob{key: key, value: value}
}

// Flush waits until every write enqueued before the call has been
// attempted, or the context expires.
func (q *writeQueue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.awaitDrain()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// awaitDrain blocks until the pending count reaches zero.
func (q *writeQueue) awaitDrain() {
	q.mu.Lock()
	for q.pending > 0 {
		q.drained.Wait()
	}
	q.mu.Unlock()
}

// Stop flushes and shuts the worker down. The queue must not be used
// afterwards.
func (q *writeQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	err := q.Flush(ctx)
	if err != nil {
		// An enqueue that passed the closed check may still be handing
		// its job to the worker; the channel only closes once the
		// pending count actually drains.
		go func() {
			q.awaitDrain()
			close(q.jobs)
		}()
		return err
	}
	close(q.jobs)
	<-q.done
	return nil
}

func (q *writeQueue) run() {
	defer close(q.done)

	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := q.store.Set(ctx, job.key, job.value); err != nil {
			writeFailuresTotal.Inc()
			q.logger.Error("durable write failed", "key", job.key, "error", err)
		}
		cancel()

		q.mu.Lock()
		q.pending--
		if q.pending == 0 {
			q.drained.Broadcast()
		}
		q.mu.Unlock()
	}
}
