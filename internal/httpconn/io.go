/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

var (
	// errBufferOverflow marks a read-buffer cursor invariant violation:
	// a client kept sending bytes without ever completing a parseable
	// line. Reaped with hardClose rather than a normal close (§9).
	errBufferOverflow = errors.New("httpconn: read buffer exhausted without a complete request")
	// errResponseTooLarge means the fixed write buffer couldn't hold
	// the assembled status line, headers and inline body — an
	// INTERNAL_ERROR-class condition the caller logs and treats as
	// fatal to the connection (§7).
	errResponseTooLarge = errors.New("httpconn: response does not fit in write buffer")
	errUnexpectedCode   = errors.New("httpconn: processWrite called with an unexpected code")
)

// Read performs one non-blocking read burst, draining until EAGAIN —
// the policy §4.1 requires for an edge-triggered one-shot descriptor,
// regardless of actor mode (this port always runs connections
// edge-triggered; see SPEC_FULL.md §4.1). It satisfies
// workerpool.Conn.
func (c *Conn) Read() error {
	if c.readEnd >= readBufferSize {
		c.hardClose()
		return errBufferOverflow
	}
	for {
		n, err := unix.Read(c.fd, c.readBuf[c.readEnd:])
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			c.ct.MarkPendingClose(c.fd)
			return err
		}
		if n == 0 {
			c.ct.MarkPendingClose(c.fd)
			return io.EOF
		}
		c.readEnd += n
		if c.readEnd >= readBufferSize {
			c.hardClose()
			return errBufferOverflow
		}
	}
}

// Process runs the read-side state machine and, once a response is
// ready, assembles it into the write buffer — but does not itself
// perform the write burst. It always ends by re-arming the connection
// through the reactor: readable if more bytes are needed, writable
// once a response is queued (§4.6: "HC.process ... always ends by
// re-arming the connection with R").
func (c *Conn) Process() error {
	code := c.processRead()
	if code == NoRequest {
		return c.react.Modify(c.fd, false)
	}
	if err := c.processWrite(code); err != nil {
		c.ct.MarkPendingClose(c.fd)
		return err
	}
	return c.react.Modify(c.fd, true)
}

// Write performs one non-blocking scatter-write burst over the
// pending iovec set, resuming a partially-sent response — the
// original's HTTPConn::write (§4.5). On EAGAIN it re-arms writable and
// waits for the next event; on full drain it releases the file
// mapping and either resets for keep-alive or hands the connection to
// conntable's pending-close list.
func (c *Conn) Write() error {
	if len(c.pendingIov) == 0 {
		return nil
	}
	for {
		n, err := unix.Writev(c.fd, c.pendingIov)
		if err != nil {
			if err == unix.EAGAIN {
				return c.react.Modify(c.fd, true)
			}
			c.unmap()
			c.ct.MarkPendingClose(c.fd)
			return err
		}
		c.pendingIov = trimIovecs(c.pendingIov, int(n))
		if len(c.pendingIov) == 0 {
			c.unmap()
			if c.linger {
				c.reset()
				return c.react.Modify(c.fd, false)
			}
			c.ct.MarkPendingClose(c.fd)
			return nil
		}
	}
}

// trimIovecs drops n bytes from the front of iovs, dropping fully
// consumed entries and slicing the first partially-consumed one — the
// bookkeeping a single writev call needs across repeated partial
// writes, since unix.Writev takes a plain [][]byte rather than an
// iovec count it can advance itself.
func trimIovecs(iovs [][]byte, n int) [][]byte {
	for n > 0 && len(iovs) > 0 {
		if n < len(iovs[0]) {
			iovs[0] = iovs[0][n:]
			return iovs
		}
		n -= len(iovs[0])
		iovs = iovs[1:]
	}
	return iovs
}
