/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Command webserver is the CLI entrypoint: it parses the original's
// two required positional arguments (bind_ip, port) plus this port's
// additive flags, then runs the server until INT/TERM (§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
	"github.com/PlasmolysisMango/MangoWebServer/internal/server"
	"github.com/PlasmolysisMango/MangoWebServer/internal/workerpool"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := flag.String("root", ".", "document root directory")
	workers := flag.Int("workers", 8, "worker pool size")
	maxConns := flag.Int("max-conns", 40000, "maximum concurrent connections")
	mode := flag.String("mode", "reactor", "actor mode: reactor or proactor")
	logLevel := flag.String("log-level", "info", "log level: error, warn, info, debug")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] bind_ip port\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return 1
	}
	bindIP := flag.Arg(0)
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", flag.Arg(1), err)
		return 1
	}

	actorMode, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logging.New(os.Stderr, parseLevel(*logLevel))

	cfg := server.Config{
		BindIP:   bindIP,
		Port:     port,
		DocRoot:  *root,
		Workers:  *workers,
		MaxConns: *maxConns,
		Mode:     actorMode,
	}
	srv := server.New(cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		return 1
	}
	return 0
}

func parseMode(s string) (workerpool.Mode, error) {
	switch s {
	case "reactor", "":
		return workerpool.ModeReactor, nil
	case "proactor":
		return workerpool.ModeProactor, nil
	default:
		return 0, fmt.Errorf("invalid -mode %q: want reactor or proactor", s)
	}
}

func parseLevel(s string) logging.Level {
	switch s {
	case "error":
		return logging.LevelError
	case "warn":
		return logging.LevelWarn
	case "debug":
		return logging.LevelDebug
	default:
		return logging.LevelInfo
	}
}
