/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package reactor wraps epoll as a readiness multiplexer: register a
// descriptor once with a triggering mode and an optional oneshot flag,
// then block in Wait for the next batch of ready descriptors. It is the
// direct descendant of the original server's EpollControl class, ported
// onto golang.org/x/sys/unix instead of <sys/epoll.h>.
package reactor

import "golang.org/x/sys/unix"

// Trigger selects level- or edge-triggered delivery for a descriptor.
type Trigger int

const (
	// LevelTriggered re-delivers readiness until the condition clears;
	// used for the listening socket so accept storms drain naturally.
	LevelTriggered Trigger = iota
	// EdgeTriggered delivers readiness only on state change; callers
	// must drain to EAGAIN. Used for every connection descriptor.
	EdgeTriggered
)

// Event is one ready descriptor surfaced by Wait.
type Event struct {
	Fd       int
	Readable bool
	Writable bool
	// Closed reports a peer hangup or error condition (EPOLLRDHUP,
	// EPOLLHUP, EPOLLERR); the caller should remove the connection.
	Closed bool
}

// Reactor owns one epoll instance and its reusable ready-event buffer.
type Reactor struct {
	epfd   int
	events []unix.EpollEvent
}
