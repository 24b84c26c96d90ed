/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sigfunnel

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// New creates the connected socket pair, ignores SIGPIPE (the original
// sets SIG_IGN and never funnels it), and starts the relay goroutine
// for SIGALRM, SIGINT and SIGTERM. Only the write end is set
// non-blocking here; the read end becomes non-blocking when it is
// registered with a reactor (reactor.Add sets O_NONBLOCK), which the
// server does edge-triggered, not oneshot — accept-storm-style
// draining is fine here since signal bytes are cheap to read in a loop.
func New() (*Funnel, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("sigfunnel: socketpair: %w", err)
	}
	readFd, writeFd := fds[0], fds[1]
	if err := unix.SetNonblock(writeFd, true); err != nil {
		unix.Close(readFd)
		unix.Close(writeFd)
		return nil, fmt.Errorf("sigfunnel: set nonblocking: %w", err)
	}

	signal.Ignore(syscall.SIGPIPE)

	f := &Funnel{
		readFd:    readFd,
		writeFd:   writeFd,
		sigCh:     make(chan os.Signal, maxSignalBytes),
		stopRelay: make(chan struct{}),
		relayDone: make(chan struct{}),
	}
	signal.Notify(f.sigCh, syscall.SIGALRM, syscall.SIGINT, syscall.SIGTERM)
	go f.relay()
	return f, nil
}

// relay forwards each delivered signal as a single byte onto the write
// end, the same action the original's send_sig handler performed
// directly from inside the signal handler.
func (f *Funnel) relay() {
	defer close(f.relayDone)
	for {
		select {
		case sig := <-f.sigCh:
			b := byte(sig.(syscall.Signal))
			for {
				_, err := unix.Write(f.writeFd, []byte{b})
				if err == unix.EAGAIN {
					continue
				}
				break
			}
		case <-f.stopRelay:
			return
		}
	}
}

// ReadFd is the descriptor the reactor should register (edge-triggered,
// no oneshot — see §4.2's policy).
func (f *Funnel) ReadFd() int { return f.readFd }

// Drain reads up to maxSignalBytes pending signal bytes and classifies
// them into a single coalesced Batch — one tick per batch regardless of
// how many ALRM bytes arrived, per invariant 6.
func (f *Funnel) Drain() (Batch, error) {
	var batch Batch
	buf := make([]byte, maxSignalBytes)
	for {
		n, err := unix.Read(f.readFd, buf)
		if err != nil {
			if err == unix.EAGAIN {
				return batch, nil
			}
			return batch, fmt.Errorf("sigfunnel: read: %w", err)
		}
		if n == 0 {
			return batch, nil
		}
		for _, b := range buf[:n] {
			switch syscall.Signal(b) {
			case syscall.SIGALRM:
				batch.TimeoutPending = true
			case syscall.SIGINT, syscall.SIGTERM:
				batch.Stop = true
			}
		}
		if n < len(buf) {
			return batch, nil
		}
	}
}

// Close stops the relay goroutine and closes both ends of the pair.
func (f *Funnel) Close() error {
	signal.Stop(f.sigCh)
	close(f.stopRelay)
	<-f.relayDone
	err1 := unix.Close(f.readFd)
	err2 := unix.Close(f.writeFd)
	if err1 != nil {
		return err1
	}
	return err2
}
