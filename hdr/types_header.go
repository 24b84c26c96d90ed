/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package hdr names the handful of request headers the connection FSM
// recognizes and provides the case-insensitive matching it needs
// against raw, NUL-terminated line slices out of a read buffer.
//
// This is a deliberately small cousin of a general MIME-header parser:
// the server recognizes exactly three headers (Host, Content-Length,
// Connection) and logs-and-ignores everything else, so there is no
// multi-value map, no canonicalization cache and no sorter here.
package hdr

const (
	// Host names the request's Host header.
	Host = "Host"
	// ContentLength names the request's Content-Length header.
	ContentLength = "Content-Length"
	// Connection names the request's Connection header, whose only
	// recognized value is "keep-alive".
	Connection = "Connection"
	// KeepAlive is the only Connection value that sets linger.
	KeepAlive = "keep-alive"
)
