/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Package logging is the server's thread-safe, level-prefixed log sink.
// It mirrors the original C++ server's async Log singleton (background
// drain thread, ERROR/WARN/INFO/DEBUG levels) but is built the way the
// teacher builds its own logging: directly atop the standard "log"
// package, never a third-party structured logger.
package logging

import (
	"log"
)

// Level is one of the four severities the server distinguishes.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelPrefix = [...]string{
	LevelError: "[ERROR] ",
	LevelWarn:  "[WARN] ",
	LevelInfo:  "[INFO] ",
	LevelDebug: "[DEBUG] ",
}

// lineCacheSize bounds how many pending lines the drain goroutine will
// coalesce; once it is full a caller writes its line synchronously
// instead of queueing it. The original server's m_cachesize
// default is 5 but a background-drained channel can comfortably hold
// more without changing the delivery contract (every line is written,
// none are dropped).
const lineCacheSize = 256

type (
	// Logger is a mutex-free, channel-backed sink: callers normally
	// hand lines to the drain goroutine and only write through the
	// underlying *log.Logger themselves when the cache is full;
	// *log.Logger serializes its own writes, so Logger adds no lock.
	Logger struct {
		out   *log.Logger
		lines chan logLine
		done  chan struct{}
		level Level
	}

	logLine struct {
		level Level
		msg   string
	}
)
