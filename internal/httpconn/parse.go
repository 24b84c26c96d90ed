/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import (
	"strconv"
	"strings"

	"github.com/PlasmolysisMango/MangoWebServer/hdr"
)

// parseRequestLine splits "METHOD URL VERSION" exactly as the
// original's parse_request_line: only GET and HTTP/1.1 are accepted,
// an optional "http://host" prefix on the URL is stripped, and the
// remainder must start with '/' (§4.4.2).
func (c *Conn) parseRequestLine(line string) Code {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return BadRequest
	}
	method, url, version := fields[0], fields[1], fields[2]
	if !strings.EqualFold(method, "GET") {
		return BadRequest
	}
	if !strings.EqualFold(version, "HTTP/1.1") {
		return BadRequest
	}
	if len(url) >= 7 && strings.EqualFold(url[:7], "http://") {
		rest := url[7:]
		idx := strings.IndexByte(rest, '/')
		if idx < 0 {
			return BadRequest
		}
		url = rest[idx:]
	}
	if len(url) == 0 || url[0] != '/' {
		return BadRequest
	}
	c.url = url
	c.version = version
	c.state = stateHeaders
	return NoRequest
}

// parseHeaders recognizes Host, Content-Length and Connection
// (case-insensitive via the hdr package); anything else is logged and
// ignored (§4.4.2, §6).
func (c *Conn) parseHeaders(line string) Code {
	if line == "" {
		if c.contentLength != 0 {
			c.state = stateContent
			return NoRequest
		}
		return GetRequest
	}
	b := []byte(line)
	if v, ok := hdr.MatchConnection(b); ok {
		if hdr.IsKeepAlive(v) {
			c.linger = true
		}
		return NoRequest
	}
	if v, ok := hdr.MatchContentLength(b); ok {
		n, err := strconv.Atoi(strings.TrimSpace(string(v)))
		if err == nil {
			c.contentLength = n
		}
		return NoRequest
	}
	if v, ok := hdr.MatchHost(b); ok {
		c.host = string(v)
		return NoRequest
	}
	c.log.Warnf("httpconn: fd %d: unrecognized header: %s", c.fd, line)
	return NoRequest
}

// parseContent only checks that the full body has arrived; the body
// bytes themselves are not otherwise inspected, since this server
// never does anything with a request body (§4.4.2).
func (c *Conn) parseContent() Code {
	if c.readEnd-c.checked >= c.contentLength {
		return GetRequest
	}
	return NoRequest
}

// processRead is the main state-machine loop over buffered lines
// (§4.4.2's phase machine driven by §4.4.1's line scanner), the direct
// port of the original's process_read.
func (c *Conn) processRead() Code {
	status := lineOK
	for {
		if c.state == stateContent {
			// The body isn't line-delimited: check once whether it has
			// all arrived and stop either way, rather than replicating
			// the original's busy-spin when the while-condition
			// reassigns linestatus = LINE_OK on every iteration (a
			// known bug in the source this was ported from).
			code := c.parseContent()
			if code == GetRequest {
				return c.doRequest()
			}
			status = lineOpen
			break
		}

		status = c.scanLine()
		if status != lineOK {
			break
		}

		line := c.currentLine()
		c.lineStart = c.checked

		switch c.state {
		case stateRequestLine:
			code := c.parseRequestLine(line)
			if code == BadRequest {
				return BadRequest
			}
		case stateHeaders:
			code := c.parseHeaders(line)
			if code == BadRequest {
				return BadRequest
			}
			if code == GetRequest {
				return c.doRequest()
			}
		default:
			return InternalError
		}
	}

	if status == lineOpen {
		return NoRequest
	}
	return BadRequest
}
