/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package httpconn

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PlasmolysisMango/MangoWebServer/internal/conntable"
	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
)

func newTestConn(t *testing.T, docRoot string) *Conn {
	t.Helper()
	log := logging.New(io.Discard, logging.LevelDebug)
	t.Cleanup(log.Close)
	return New(-1, docRoot, nil, conntable.New(), nil, log)
}

func feed(c *Conn, data string) {
	n := copy(c.readBuf[c.readEnd:], data)
	c.readEnd += n
}

func TestScanLineStates(t *testing.T) {
	c := newTestConn(t, t.TempDir())
	feed(c, "GET / HTTP/1.1\r\nHost: x\r\n\r\n")

	if got := c.scanLine(); got != lineOK {
		t.Fatalf("first scanLine = %v, want lineOK", got)
	}
	if got := c.currentLine(); got != "GET / HTTP/1.1" {
		t.Fatalf("currentLine = %q", got)
	}
	c.lineStart = c.checked

	if got := c.scanLine(); got != lineOK {
		t.Fatalf("second scanLine = %v, want lineOK", got)
	}
	if got := c.currentLine(); got != "Host: x" {
		t.Fatalf("currentLine = %q", got)
	}
}

func TestScanLineOpenOnPartialTerminator(t *testing.T) {
	c := newTestConn(t, t.TempDir())
	feed(c, "GET /index.html HTT")

	if got := c.scanLine(); got != lineOpen {
		t.Fatalf("scanLine = %v, want lineOpen", got)
	}
}

// TestScenario1FileRequestCloseConnection covers §8 scenario 1: a
// simple GET with no keep-alive header against a real file closes
// after responding, with the 200/2333 quirk reason string.
func TestScenario1FileRequestCloseConnection(t *testing.T) {
	root := t.TempDir()
	body := "<html><body>hi</body></html>"
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c := newTestConn(t, root)
	feed(c, "GET /index.html HTTP/1.1\r\nHost: x.y\r\n\r\n")

	code := c.processRead()
	if code != FileRequest {
		t.Fatalf("processRead = %v, want FileRequest", code)
	}
	if err := c.processWrite(code); err != nil {
		t.Fatalf("processWrite: %v", err)
	}

	head := string(c.writeBuf[:c.writeEnd])
	if !strings.HasPrefix(head, "HTTP/1.1 200 2333\r\n") {
		t.Fatalf("status line = %q", head)
	}
	if !strings.Contains(head, "Content-Length: 28\r\n") {
		t.Fatalf("missing content-length in %q", head)
	}
	if !strings.Contains(head, "Connection: close\r\n") {
		t.Fatalf("expected Connection: close in %q", head)
	}
	if len(c.pendingIov) != 2 || string(c.pendingIov[1]) != body {
		t.Fatalf("pendingIov file segment mismatch: %+v", c.pendingIov)
	}
}

// TestScenario2KeepAliveHeader covers §8 scenario 2.
func TestScenario2KeepAliveHeader(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	c := newTestConn(t, root)
	feed(c, "GET /index.html HTTP/1.1\r\nConnection: keep-alive\r\n\r\n")

	code := c.processRead()
	if code != FileRequest {
		t.Fatalf("processRead = %v, want FileRequest", code)
	}
	if !c.linger {
		t.Fatal("expected linger=true after Connection: keep-alive")
	}
	if err := c.processWrite(code); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(c.writeBuf[:c.writeEnd]), "Connection: keep-alive\r\n") {
		t.Fatalf("expected keep-alive header, got %q", c.writeBuf[:c.writeEnd])
	}
}

// TestScenario3BadRequestOnNonGetMethod covers §8 scenario 3.
func TestScenario3BadRequestOnNonGetMethod(t *testing.T) {
	c := newTestConn(t, t.TempDir())
	feed(c, "POST /x HTTP/1.1\r\n\r\n")

	code := c.processRead()
	if code != BadRequest {
		t.Fatalf("processRead = %v, want BadRequest", code)
	}
	if err := c.processWrite(code); err != nil {
		t.Fatal(err)
	}
	want := "HTTP/1.1 400 Bad Request\r\nContent-Length: 68\r\nConnection: close\r\n\r\nYour request has bad syntax or is inherently impossible to satisfy.\n"
	if got := string(c.writeBuf[:c.writeEnd]); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

// TestScenario4MissingFile covers §8 scenario 4.
func TestScenario4MissingFile(t *testing.T) {
	c := newTestConn(t, t.TempDir())
	feed(c, "GET /missing HTTP/1.1\r\n\r\n")

	code := c.processRead()
	if code != NoResource {
		t.Fatalf("processRead = %v, want NoResource", code)
	}
	c.processWrite(code)
	if !strings.Contains(string(c.writeBuf[:c.writeEnd]), "404 Not Found") {
		t.Fatalf("expected 404, got %q", c.writeBuf[:c.writeEnd])
	}
}

// TestScenario5Forbidden covers §8 scenario 5: a file without
// world-read permission.
func TestScenario5Forbidden(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "noperm")
	if err := os.WriteFile(path, []byte("secret"), 0640); err != nil {
		t.Fatal(err)
	}
	c := newTestConn(t, root)
	feed(c, "GET /noperm HTTP/1.1\r\n\r\n")

	code := c.processRead()
	if code != ForbiddenRequest {
		t.Fatalf("processRead = %v, want ForbiddenRequest", code)
	}
}

// TestScenario6PartialRequestThenCompletion covers §8 scenario 6: an
// incomplete request line yields NoRequest and leaves parser state
// intact for the remaining bytes to complete it.
func TestScenario6PartialRequestThenCompletion(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	c := newTestConn(t, root)
	feed(c, "GET /index.html HTT")

	if code := c.processRead(); code != NoRequest {
		t.Fatalf("processRead (partial) = %v, want NoRequest", code)
	}
	if c.writeEnd != 0 {
		t.Fatalf("writeEnd = %d, want 0 (no bytes written on partial request)", c.writeEnd)
	}

	feed(c, "P/1.1\r\n\r\n")
	if code := c.processRead(); code != FileRequest {
		t.Fatalf("processRead (completed) = %v, want FileRequest", code)
	}
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	if _, ok := resolvePath(root, "/../../../etc/passwd"); ok {
		t.Fatal("expected traversal to be rejected")
	}
	if _, ok := resolvePath(root, "/safe.txt"); !ok {
		t.Fatal("expected a non-escaping path to be accepted")
	}
}

func TestTrimIovecs(t *testing.T) {
	iovs := [][]byte{[]byte("abc"), []byte("defgh")}
	got := trimIovecs(iovs, 4)
	if len(got) != 1 || string(got[0]) != "efgh" {
		t.Fatalf("trimIovecs = %+v", got)
	}
}
