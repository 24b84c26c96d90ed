/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package timingwheel

import (
	"testing"
	"time"
)

func TestAddRemoveRoundTripLeavesSlotsUnchanged(t *testing.T) {
	w := New(DefaultSlots, DefaultStep)
	if w.Slots() != DefaultSlots {
		t.Fatalf("Slots() = %d, want %d", w.Slots(), DefaultSlots)
	}
	e := w.Add(5*time.Second, false, func() {})
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", w.Len())
	}
	w.Remove(e)
	if w.Len() != 0 {
		t.Fatalf("Len() after Remove = %d, want 0", w.Len())
	}
	if w.Slots() != DefaultSlots {
		t.Fatalf("Slots() after round trip = %d, want %d", w.Slots(), DefaultSlots)
	}
}

// TestRemovedEntryNeverFires covers invariant 5: once Remove has been
// called, later Ticks that sweep through the entry's stale slot must
// not invoke its callback, even though the list node may still be
// reachable if Remove raced a Tick holding the same pointer.
func TestRemovedEntryNeverFires(t *testing.T) {
	w := New(4, time.Second)
	fired := false
	e := w.Add(time.Second, false, func() { fired = true })
	w.Remove(e)

	for i := 0; i < 4; i++ {
		w.Tick()
	}
	if fired {
		t.Fatal("removed entry fired its callback")
	}
}

// TestIdleConnectionReapedAfterThreeSteps mirrors scenario 7: a timer
// set for 3*step_seconds is filed three slots past the cursor. The
// first Tick sweeps the slot the cursor was on when the timer was
// added, so the timer fires on the fourth tick, once three whole steps
// have elapsed, and not before.
func TestIdleConnectionReapedAfterThreeSteps(t *testing.T) {
	w := New(8, time.Second)
	fireCount := 0
	w.Add(3*time.Second, false, func() { fireCount++ })

	w.Tick()
	if fireCount != 0 {
		t.Fatalf("fired after 1 tick, want 0")
	}
	w.Tick()
	if fireCount != 0 {
		t.Fatalf("fired after 2 ticks, want 0")
	}
	w.Tick()
	if fireCount != 0 {
		t.Fatalf("fired after 3 ticks, want 0")
	}
	w.Tick()
	if fireCount != 1 {
		t.Fatalf("fireCount after 4 ticks = %d, want 1", fireCount)
	}
}

func TestLoopingEntryReschedulesAfterFiring(t *testing.T) {
	w := New(4, time.Second)
	fireCount := 0
	w.Add(2*time.Second, true, func() { fireCount++ })

	// First firing on tick 3 (tick 1 sweeps the slot the cursor started
	// on), then every 2 ticks: ticks 3, 5 and 7.
	for i := 0; i < 7; i++ {
		w.Tick()
	}
	if fireCount != 3 {
		t.Fatalf("fireCount = %d, want 3 over 7 ticks at a 2-tick period", fireCount)
	}
	if w.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 live looping entry", w.Len())
	}
}

func TestModifyRelocatesEntryRelativeToCurrentCursor(t *testing.T) {
	w := New(4, time.Second)
	fired := false
	e := w.Add(10*time.Second, false, func() { fired = true })

	w.Tick()
	w.Modify(e, 2*time.Second)

	w.Tick()
	if fired {
		t.Fatal("fired after 1 tick post-modify, want 0")
	}
	w.Tick()
	if !fired {
		t.Fatal("did not fire after 2 ticks post-modify")
	}
}
