/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package sigfunnel converts asynchronous signal delivery into ordinary
// readable bytes on a connected socket pair, so the rest of the server
// never runs inside a signal handler. It is the Go port of the original
// server's SigHandler: there, a raw sigaction handler wrote one byte to
// a socketpair; here, Go's own async-signal-safe relay (os/signal) does
// that job, and a small goroutine forwards each delivery onto the write
// end of the pair exactly the same way. Go gives no way to install a
// handler that itself calls write(2), so the goroutine is the
// idiomatic substitute — it still serializes delivery into ordinary
// bytes on a socket the reactor polls, which is the property the
// design actually depends on (§4.2, §9: never mutate connection/timer
// state from a handler).
package sigfunnel

import "os"

// maxSignalBytes bounds one Drain read, matching the original's
// MAX_SIGNALNUM byte buffer.
const maxSignalBytes = 1024

// Batch is the decoded result of draining one readable event on the
// funnel: which flags were raised, coalesced across every byte read in
// this call (ALRM coalesces to one pending tick, per invariant 6).
type Batch struct {
	TimeoutPending bool
	Stop           bool
}

// Funnel owns the connected socket pair and the background relay that
// forwards delivered signals onto its write end.
type Funnel struct {
	readFd, writeFd int
	sigCh           chan os.Signal
	stopRelay       chan struct{}
	relayDone       chan struct{}
}
