/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package conntable

import "testing"

type fakeConn struct {
	fd     int
	closed int
}

func (f *fakeConn) Fd() int { return f.fd }
func (f *fakeConn) Close() error {
	f.closed++
	return nil
}

func TestAddFindRemove(t *testing.T) {
	ct := New()
	c := &fakeConn{fd: 7}
	ct.Add(c)

	if got := ct.Find(7); got != Conn(c) {
		t.Fatalf("Find(7) = %v, want %v", got, c)
	}
	if ct.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ct.Len())
	}

	ct.Remove(7)
	if ct.Find(7) != nil {
		t.Fatal("Find(7) after Remove should be nil")
	}
	if c.closed != 1 {
		t.Fatalf("closed = %d, want 1", c.closed)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ct := New()
	c := &fakeConn{fd: 3}
	ct.Add(c)

	ct.Remove(3)
	ct.Remove(3)
	ct.Remove(99) // never added

	if c.closed != 1 {
		t.Fatalf("closed = %d, want exactly 1 from repeated/unknown removes", c.closed)
	}
}

func TestFindMissingReturnsNil(t *testing.T) {
	ct := New()
	if ct.Find(42) != nil {
		t.Fatal("Find on empty table should return nil")
	}
}

func TestPendingCloseDrainedOnceAndCleared(t *testing.T) {
	ct := New()
	ct.MarkPendingClose(1)
	ct.MarkPendingClose(2)

	got := ct.DrainPendingClose()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("DrainPendingClose() = %v, want [1 2]", got)
	}
	if got := ct.DrainPendingClose(); got != nil {
		t.Fatalf("second DrainPendingClose() = %v, want nil", got)
	}
}
