/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// resolvePath joins docRoot and requestURL and rejects any result
// whose cleaned form escapes docRoot (§4.10, the resolved open
// question from spec.md §9: this port fixes path traversal rather
// than preserving the original's naïve strncpy concatenation). The
// second return value is false when the request must be refused; the
// caller treats that identically to a missing file (404), leaking no
// information about why the request was rejected.
func resolvePath(docRoot, requestURL string) (string, bool) {
	joined := filepath.Join(docRoot, requestURL)
	cleanRoot := filepath.Clean(docRoot)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", false
	}
	if len(joined) > realPathLimit {
		joined = joined[:realPathLimit]
	}
	return joined, true
}

// doRequest resolves c.url against the document root and, if the
// target is a world-readable regular file, memory-maps it — the
// original's do_request (§4.4.3).
func (c *Conn) doRequest() Code {
	real, ok := resolvePath(c.docRoot, c.url)
	if !ok {
		return NoResource
	}
	c.realPath = real

	info, err := os.Stat(real)
	if err != nil {
		return NoResource
	}
	if info.Mode().Perm()&sIROTH == 0 {
		return ForbiddenRequest
	}
	if info.IsDir() {
		return BadRequest
	}

	c.fileSize = info.Size()
	if c.fileSize == 0 {
		return FileRequest
	}

	f, err := os.Open(real)
	if err != nil {
		c.log.Errorf("httpconn: fd %d: open %s: %v", c.fd, real, err)
		return InternalError
	}
	defer f.Close()

	data, err := unix.Mmap(int(f.Fd()), 0, int(c.fileSize), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		c.log.Errorf("httpconn: fd %d: mmap %s: %v", c.fd, real, err)
		return InternalError
	}
	c.fileMap = data
	return FileRequest
}
