package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultAddr            = "127.0.0.1:4221"
	DefaultShutdownTimeout = 30 * time.Second
)

// Handler turns one request stream into serialized response bytes.
// *dispatch.Dispatcher satisfies it.
type Handler interface {
	Handle(ctx context.Context, r io.Reader) []byte
}

// Stats is a snapshot of the connection counters.
type Stats struct {
	Accepted int64 `json:"accepted"`
	Active   int64 `json:"active"`
	Served   int64 `json:"served"`
}

type Server struct {
	Addr    string
	Handler Handler

	// MaxConns bounds in-flight connections. Zero means unbounded.
	MaxConns     int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ShutdownTimeout is how long in-flight connections may run after
	// shutdown starts before they are closed. Zero means
	// DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
	Logger          *slog.Logger

	accepted atomic.Int64
	active   atomic.Int64
	served   atomic.Int64
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.ShutdownTimeout > 0 {
		return s.ShutdownTimeout
	}
	return DefaultShutdownTimeout
}

// Stats returns the current counter values.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Load(),
		Active:   s.active.Load(),
		Served:   s.served.Load(),
	}
}

// ListenAndServe listens on s.Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.logger().InfoContext(ctx, "listening", "addr", ln.Addr().String(), "max_conns", s.MaxConns)
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Accept fails.
// It closes ln and returns after every accepted connection has finished.
// Connections still open ShutdownTimeout after ctx is cancelled are closed.
// Shutdown through ctx returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.Handler == nil {
		return errors.New("server: nil handler")
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer func() { _ = ln.Close() }()

	var sem *semaphore.Weighted
	if s.MaxConns > 0 {
		sem = semaphore.NewWeighted(s.MaxConns)
	}

	connCtx := context.WithoutCancel(ctx)
	conns := newConnSet()

	drained := make(chan struct{})
	defer close(drained)

	stopForce := context.AfterFunc(ctx, func() {
		timer := time.NewTimer(s.shutdownTimeout())
		defer timer.Stop()

		select {
		case <-drained:
		case <-timer.C:
			if n := conns.closeAll(); n > 0 {
				s.logger().WarnContext(connCtx, "closing connections after shutdown timeout", "count", n)
			}
		}
	})
	defer stopForce()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				s.logger().InfoContext(connCtx, "server stopping")
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if sem != nil {
				sem.Release(1)
			}
			if ctx.Err() != nil {
				s.logger().InfoContext(connCtx, "server stopping")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.accepted.Add(1)
		if !conns.add(conn) {
			_ = conn.Close()
			if sem != nil {
				sem.Release(1)
			}
			continue
		}

		wg.Go(func() {
			if sem != nil {
				defer sem.Release(1)
			}
			defer conns.remove(conn)
			s.serveConn(connCtx, conn)
		})
	}
}

// connSet tracks open connections so shutdown can close stragglers.
type connSet struct {
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

func newConnSet() *connSet {
	return &connSet{conns: make(map[net.Conn]struct{})}
}

// add registers conn. It returns false once closeAll has run.
func (c *connSet) add(conn net.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conns[conn] = struct{}{}
	return true
}

func (c *connSet) remove(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn)
}

// closeAll closes every registered connection and rejects later adds.
func (c *connSet) closeAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for conn := range c.conns {
		_ = conn.Close()
	}
	return len(c.conns)
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	s.active.Add(1)
	defer s.active.Add(-1)
	defer func() { _ = conn.Close() }()

	logger := s.logger().With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())

	if s.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}

	out := s.Handler.Handle(ctx, conn)

	if s.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	if _, err := conn.Write(out); err != nil {
		logger.WarnContext(ctx, "write response failed", "err", err)
		return
	}

	s.served.Add(1)
	logger.DebugContext(ctx, "connection served", "bytes", len(out))
}
