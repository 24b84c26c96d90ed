/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// New creates an epoll instance with a ready-event buffer sized for
// maxEvents descriptors per Wait call (the original's MAX_EVENT_NUMBER,
// default 10000).
func New(maxEvents int) (*Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll_create1: %w", err)
	}
	return &Reactor{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

// Add registers fd for readable + peer-closed events. If trigger is
// EdgeTriggered, edge semantics are requested; if oneshot, single
// delivery is requested. Add also makes fd non-blocking: every
// descriptor registered with the reactor is read and written
// non-blockingly from here on. Failure to register is fatal to the
// descriptor — the caller should close it.
func (r *Reactor) Add(fd int, trigger Trigger, oneshot bool) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("reactor: set nonblocking fd=%d: %w", fd, err)
	}
	events := uint32(unix.EPOLLIN | unix.EPOLLRDHUP)
	if trigger == EdgeTriggered {
		events |= unix.EPOLLET
	}
	if oneshot {
		events |= unix.EPOLLONESHOT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl add fd=%d: %w", fd, err)
	}
	return nil
}

// Modify re-arms fd with the supplied direction, always edge + oneshot
// + peer-closed, per the policy in §4.1: every burst that returns
// EAGAIN, or that completes a read/write phase, re-arms this way to
// receive exactly the next event.
func (r *Reactor) Modify(fd int, writable bool) error {
	events := uint32(unix.EPOLLET | unix.EPOLLONESHOT | unix.EPOLLRDHUP)
	if writable {
		events |= unix.EPOLLOUT
	} else {
		events |= unix.EPOLLIN
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("reactor: epoll_ctl mod fd=%d: %w", fd, err)
	}
	return nil
}

// Remove deregisters fd and closes it. Must be called exactly once per
// descriptor; the caller (conntable) enforces that.
func (r *Reactor) Remove(fd int) error {
	// EPOLL_CTL_DEL with a nil event is accepted by the kernel but the
	// unix package requires a non-nil pointer on some platforms; an
	// empty event is ignored for DEL.
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{})
	return unix.Close(fd)
}

// Wait blocks until at least one descriptor is ready or a signal
// interrupts the call, and returns the ready events. An EINTR is not
// an error: it is reported as zero ready events so the caller simply
// re-enters Wait.
func (r *Reactor) Wait(out []Event) (int, error) {
	n, err := unix.EpollWait(r.epfd, r.events, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("reactor: epoll_wait: %w", err)
	}
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		ev := r.events[i]
		out[i] = Event{
			Fd:       int(ev.Fd),
			Readable: ev.Events&unix.EPOLLIN != 0,
			Writable: ev.Events&unix.EPOLLOUT != 0,
			Closed:   ev.Events&(unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0,
		}
	}
	return n, nil
}

// Close releases the epoll file descriptor itself (not the registered
// connection descriptors, which Remove owns).
func (r *Reactor) Close() error {
	return unix.Close(r.epfd)
}
