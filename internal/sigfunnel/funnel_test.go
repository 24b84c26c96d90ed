/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package sigfunnel

import (
	"os"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func waitReadable(t *testing.T, fd int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var pfd [1]unix.PollFd
		pfd[0] = unix.PollFd{Fd: int32(fd), Events: unix.POLLIN}
		n, err := unix.Poll(pfd[:], 50)
		if err != nil && err != unix.EINTR {
			t.Fatalf("poll: %v", err)
		}
		if n > 0 {
			return
		}
	}
	t.Fatal("timed out waiting for funnel to become readable")
}

func TestFunnelAlarmCoalesces(t *testing.T) {
	f, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	pid := os.Getpid()
	for i := 0; i < 5; i++ {
		if err := syscall.Kill(pid, syscall.SIGALRM); err != nil {
			t.Fatalf("kill: %v", err)
		}
	}

	waitReadable(t, f.ReadFd())
	// Give the relay goroutine a moment to forward every delivered signal.
	time.Sleep(20 * time.Millisecond)

	batch, err := f.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !batch.TimeoutPending {
		t.Fatal("expected TimeoutPending after SIGALRM")
	}
	if batch.Stop {
		t.Fatal("did not expect Stop")
	}
}

func TestFunnelStopSignals(t *testing.T) {
	f, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer f.Close()

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}
	waitReadable(t, f.ReadFd())
	time.Sleep(20 * time.Millisecond)

	batch, err := f.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if !batch.Stop {
		t.Fatal("expected Stop after SIGTERM")
	}
}
