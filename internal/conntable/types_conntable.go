/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package conntable is the sole authority for connection lifetime: a
// descriptor-keyed map from fd to its owning handle, plus the
// pending-close list a worker uses to hand a close decision back to
// the loop instead of acting on it directly. It is the Go port of the
// original server's ConnHandler-keyed connection map (§4.7, §9's
// "later, ConnHandler-based ownership model").
package conntable

import "sync"

// Conn is the minimum surface a connection handle must expose to be
// held by the table. internal/httpconn.Conn satisfies this; the table
// itself never imports httpconn, so the dependency runs one way only
// (httpconn depends on conntable's MarkPendingClose, not the other
// way around).
type Conn interface {
	Fd() int
	// Close releases the descriptor and any resources tied to it
	// (file mapping, reactor registration). It is called at most
	// once per connection by Table.Remove and must be idempotent.
	Close() error
}

// Table is the hash map keyed by descriptor, holding shared handles to
// connections, plus the pending-close list (§4.7, §5 "ownership
// transfer").
type Table struct {
	mu      sync.Mutex
	conns   map[int]Conn
	pending []int
}

// New returns an empty table.
func New() *Table {
	return &Table{conns: make(map[int]Conn)}
}
