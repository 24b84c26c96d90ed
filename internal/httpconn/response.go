/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import "fmt"

// addResponse appends formatted bytes to the write buffer, bounded at
// writeBufferSize-1 — the original's add_response/vsnprintf bound
// check (§4.5).
func (c *Conn) addResponse(format string, args ...interface{}) bool {
	if c.writeEnd >= writeBufferSize {
		return false
	}
	s := fmt.Sprintf(format, args...)
	if c.writeEnd+len(s) > writeBufferSize-1 {
		return false
	}
	copy(c.writeBuf[c.writeEnd:], s)
	c.writeEnd += len(s)
	return true
}

func (c *Conn) addStatusLine(status int, title string) bool {
	return c.addResponse("HTTP/1.1 %d %s\r\n", status, title)
}

func (c *Conn) addContentLength(n int) bool { return c.addResponse("Content-Length: %d\r\n", n) }

func (c *Conn) addLinger() bool {
	if c.linger {
		return c.addResponse("Connection: keep-alive\r\n")
	}
	return c.addResponse("Connection: close\r\n")
}

func (c *Conn) addBlankLine() bool { return c.addResponse("\r\n") }

func (c *Conn) addContent(body string) bool { return c.addResponse("%s", body) }

func (c *Conn) addHeaders(contentLength int) bool {
	return c.addContentLength(contentLength) && c.addLinger() && c.addBlankLine()
}

// writeErrorResponse assembles a status line, headers and inline body
// for one of the fixed error/status entries (§6, §8 scenarios 3-5).
func (c *Conn) writeErrorResponse(e statusEntry) bool {
	if !c.addStatusLine(e.status, e.title) {
		return false
	}
	if !c.addHeaders(len(e.body)) {
		return false
	}
	return c.addContent(e.body)
}

// processWrite assembles the full response for code into the write
// buffer and, for FileRequest, builds the two-element scatter vector
// — the original's process_write (§4.5, §6).
func (c *Conn) processWrite(code Code) error {
	switch code {
	case InternalError:
		if !c.writeErrorResponse(status500) {
			return errResponseTooLarge
		}
	case BadRequest:
		if !c.writeErrorResponse(status400) {
			return errResponseTooLarge
		}
	case NoResource:
		if !c.writeErrorResponse(status404) {
			return errResponseTooLarge
		}
	case ForbiddenRequest:
		if !c.writeErrorResponse(status403) {
			return errResponseTooLarge
		}
	case FileRequest:
		if !c.addStatusLine(status200.status, status200.title) {
			return errResponseTooLarge
		}
		if c.fileSize != 0 {
			if !c.addHeaders(int(c.fileSize)) {
				return errResponseTooLarge
			}
			c.pendingIov = [][]byte{c.writeBuf[:c.writeEnd], c.fileMap}
			return nil
		}
		if !c.addHeaders(len(emptyResourceBody)) {
			return errResponseTooLarge
		}
		if !c.addContent(emptyResourceBody) {
			return errResponseTooLarge
		}
	default:
		return errUnexpectedCode
	}
	c.pendingIov = [][]byte{c.writeBuf[:c.writeEnd]}
	return nil
}
