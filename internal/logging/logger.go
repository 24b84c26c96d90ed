/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package logging

import (
	"fmt"
	"log"
)

// New starts a Logger writing to w, draining on a background goroutine.
// level bounds which severities are actually written; messages above
// level are dropped cheaply before formatting.
func New(w interface {
	Write([]byte) (int, error)
}, level Level) *Logger {
	l := &Logger{
		out:   log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds),
		lines: make(chan logLine, lineCacheSize),
		done:  make(chan struct{}),
		level: level,
	}
	go l.drain()
	return l
}

// drain is the background thread that serializes all writes to out.
// It is the Go analogue of the original Log::asyncWork/asyncSave pair.
func (l *Logger) drain() {
	defer close(l.done)
	for line := range l.lines {
		l.out.Print(levelPrefix[line.level] + line.msg)
	}
}

// Close stops accepting new lines and blocks until the drain goroutine
// has flushed everything already queued.
func (l *Logger) Close() {
	close(l.lines)
	<-l.done
}

func (l *Logger) push(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	select {
	case l.lines <- logLine{level, msg}:
	default:
		// Cache is full: write synchronously rather than drop a line.
		l.out.Print(levelPrefix[level] + msg)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.push(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.push(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.push(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.push(LevelDebug, format, args...) }
