/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package server

import (
	"context"

	"golang.org/x/sys/unix"

	"github.com/PlasmolysisMango/MangoWebServer/internal/reactor"
	"github.com/PlasmolysisMango/MangoWebServer/internal/timingwheel"
)

// loop is the top-level dispatch loop (§4.8's pseudocode): it blocks
// in reactor.Wait, routes each ready event, drains any pending-close
// descriptors accumulated by workers, and ticks the timing wheel once
// per signal batch that carried a pending ALRM. It only exits once
// INT/TERM has been observed through the signal funnel; an externally
// cancelled ctx is noticed at the top of the next iteration rather
// than interrupting a blocked Wait, since epoll_wait has no ctx
// awareness of its own.
func (s *Server) loop(ctx context.Context) error {
	events := make([]reactor.Event, s.cfg.MaxEvents)
	for !s.stop {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.react.Wait(events)
		if err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			switch {
			case ev.Fd == s.listenFd:
				s.acceptAll()
			case ev.Fd == s.funnel.ReadFd():
				s.handleSignals()
			case ev.Closed:
				s.ct.Remove(ev.Fd)
			case ev.Readable:
				s.dispatchRead(ev.Fd)
			case ev.Writable:
				s.dispatchWrite(ev.Fd)
			}
		}

		for _, fd := range s.ct.DrainPendingClose() {
			s.ct.Remove(fd)
		}

		if s.timeoutPending {
			s.wheel.Tick()
			unix.Alarm(uint(timingwheel.DefaultStep.Seconds()))
			s.timeoutPending = false
		}
	}
	return nil
}

// handleSignals drains the funnel and classifies the batch — ALRM
// defers a single tick to end-of-batch, INT/TERM request a stop
// (§4.2, §4.8).
func (s *Server) handleSignals() {
	batch, err := s.funnel.Drain()
	if err != nil {
		s.log.Errorf("server: signal funnel drain: %v", err)
		return
	}
	if batch.TimeoutPending {
		s.timeoutPending = true
	}
	if batch.Stop {
		s.log.Infof("server: stop signal received")
		s.stop = true
	}
}
