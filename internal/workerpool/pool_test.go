/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package workerpool

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
)

type fakeConn struct {
	fd int

	mu       sync.Mutex
	reads    int32
	writes   int32
	processN int32
	inFlight int32
	maxInFl  int32
}

func (f *fakeConn) Fd() int { return f.fd }

func (f *fakeConn) Read() error {
	atomic.AddInt32(&f.reads, 1)
	return nil
}

func (f *fakeConn) Write() error {
	atomic.AddInt32(&f.writes, 1)
	return nil
}

// Process records concurrent entry so the test can assert invariant 4:
// at most one worker executes a given connection at any instant. Real
// one-shot rearm discipline is enforced by the reactor/server layer;
// here the test merely exercises that the pool doesn't itself
// introduce concurrent dispatch of the same item.
func (f *fakeConn) Process() error {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		old := atomic.LoadInt32(&f.maxInFl)
		if n <= old || atomic.CompareAndSwapInt32(&f.maxInFl, old, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&f.inFlight, -1)
	atomic.AddInt32(&f.processN, 1)
	return nil
}

func newTestLogger() *logging.Logger {
	return logging.New(io.Discard, logging.LevelDebug)
}

func TestReactorModeDispatchesReadThenProcess(t *testing.T) {
	log := newTestLogger()
	defer log.Close()
	p := New(2, 8, ModeReactor, log)

	conn := &fakeConn{fd: 5}
	if !p.Enqueue(Item{Conn: conn, Kind: ReadThenProcess}) {
		t.Fatal("Enqueue should succeed under capacity")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&conn.reads) != 1 {
		t.Fatalf("reads = %d, want 1", conn.reads)
	}
	if atomic.LoadInt32(&conn.processN) != 1 {
		t.Fatalf("processN = %d, want 1", conn.processN)
	}
}

func TestProactorModeDispatchesProcessOnly(t *testing.T) {
	log := newTestLogger()
	defer log.Close()
	p := New(2, 8, ModeProactor, log)

	conn := &fakeConn{fd: 9}
	p.Enqueue(Item{Conn: conn, Kind: ProcessOnly})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&conn.reads) != 0 {
		t.Fatalf("reads = %d, want 0 in proactor mode", conn.reads)
	}
	if atomic.LoadInt32(&conn.processN) != 1 {
		t.Fatalf("processN = %d, want 1", conn.processN)
	}
}

func TestEnqueueReturnsFalseWhenFull(t *testing.T) {
	log := newTestLogger()
	defer log.Close()
	p := New(1, 1, ModeReactor, log)

	if !p.Enqueue(Item{Conn: &fakeConn{fd: 1}, Kind: ProcessOnly}) {
		t.Fatal("first Enqueue should succeed")
	}
	if p.Enqueue(Item{Conn: &fakeConn{fd: 2}, Kind: ProcessOnly}) {
		t.Fatal("second Enqueue should report backpressure")
	}
}

// TestSingleOutstandingItemNeverRunsConcurrently covers invariant 4
// from the pool side: one-shot rearm upstream guarantees at most one
// queued item per connection at a time, so a single enqueued item
// should never overlap with itself across the worker set.
func TestSingleOutstandingItemNeverRunsConcurrently(t *testing.T) {
	log := newTestLogger()
	defer log.Close()
	p := New(4, 16, ModeReactor, log)

	conn := &fakeConn{fd: 1}
	p.Enqueue(Item{Conn: conn, Kind: ProcessOnly})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&conn.maxInFl) > 1 {
		t.Fatalf("maxInFl = %d, want at most 1", conn.maxInFl)
	}
	if atomic.LoadInt32(&conn.processN) != 1 {
		t.Fatalf("processN = %d, want 1", conn.processN)
	}
}
