package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/api"
	"github.com/sagarc03/wirehttp/dispatch"
	"github.com/sagarc03/wirehttp/filesystem"
	"github.com/sagarc03/wirehttp/router"
	"github.com/sagarc03/wirehttp/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type handlerFunc func(ctx context.Context, r io.Reader) []byte

func (f handlerFunc) Handle(ctx context.Context, r io.Reader) []byte { return f(ctx, r) }

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	store, closeRoot, err := filesystem.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeRoot() })

	b := router.NewBuilder()
	require.NoError(t, api.Register(b))
	return dispatch.New(&dispatch.Config{Logger: quiet}, b.Build(), &wirehttp.Env{Files: store})
}

// start runs srv on a loopback listener and returns its address. The server
// is shut down and drained when the test ends.
func start(t *testing.T, srv *server.Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return ln.Addr().String()
}

func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(out)
}

func TestServer_ServesRequests(t *testing.T) {
	addr := start(t, &server.Server{Handler: newDispatcher(t), Logger: quiet})

	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n"))
	assert.Equal(t,
		"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\n\r\nabc",
		roundTrip(t, addr, "GET /echo/abc HTTP/1.1\r\nHost: localhost:4221\r\n\r\n"))
	assert.Equal(t, "HTTP/1.1 201 Created\r\n\r\n",
		roundTrip(t, addr, "POST /files/test.txt HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))
	assert.Equal(t,
		"HTTP/1.1 200 OK\r\nContent-Type: application/octet-stream\r\nContent-Length: 5\r\n\r\nhello",
		roundTrip(t, addr, "GET /files/test.txt HTTP/1.1\r\n\r\n"))
}

func TestServer_ConcurrentConnections(t *testing.T) {
	addr := start(t, &server.Server{Handler: newDispatcher(t), Logger: quiet})

	results := make(chan string, 20)
	for range 20 {
		go func() {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				results <- err.Error()
				return
			}
			defer func() { _ = conn.Close() }()
			_, _ = conn.Write([]byte("GET /echo/hi HTTP/1.1\r\n\r\n"))
			out, _ := io.ReadAll(conn)
			results <- string(out)
		}()
	}

	for range 20 {
		assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 2\r\n\r\nhi", <-results)
	}
}

func TestServer_Stats(t *testing.T) {
	srv := &server.Server{Handler: newDispatcher(t), Logger: quiet}
	addr := start(t, srv)

	roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n")
	roundTrip(t, addr, "BAD\r\n\r\n")

	assert.Eventually(t, func() bool {
		return srv.Stats() == server.Stats{Accepted: 2, Active: 0, Served: 2}
	}, time.Second, 10*time.Millisecond)
}

func TestServer_MaxConns(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	srv := &server.Server{
		MaxConns: 1,
		Logger:   quiet,
		Handler: handlerFunc(func(ctx context.Context, r io.Reader) []byte {
			entered <- struct{}{}
			<-release
			return []byte("HTTP/1.1 200 OK\r\n\r\n")
		}),
	}
	addr := start(t, srv)

	first, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()
	<-entered

	second, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	select {
	case <-entered:
		t.Fatal("second connection admitted past the gate")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int64(1), srv.Stats().Accepted)
	assert.Equal(t, int64(1), srv.Stats().Active)

	close(release)

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("second connection never admitted")
	}

	out, err := io.ReadAll(second)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", string(out))
}

func TestServer_ReadTimeout(t *testing.T) {
	addr := start(t, &server.Server{
		Handler:     newDispatcher(t),
		ReadTimeout: 50 * time.Millisecond,
		Logger:      quiet,
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\n"))
	require.NoError(t, err)

	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 400 Bad Request\r\n\r\n", string(out))
}

func TestServer_ShutdownWaitsForInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var handlerCtxErr error

	srv := &server.Server{
		Logger: quiet,
		Handler: handlerFunc(func(ctx context.Context, r io.Reader) []byte {
			close(entered)
			<-release
			handlerCtxErr = ctx.Err()
			return []byte("HTTP/1.1 200 OK\r\n\r\n")
		}),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	<-entered

	cancel()

	select {
	case <-done:
		t.Fatal("Serve returned before the in-flight connection finished")
	case <-time.After(100 * time.Millisecond):
	}

	_, err = net.Dial("tcp", ln.Addr().String())
	assert.Error(t, err, "listener closed on shutdown")

	close(release)

	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n\r\n", string(out))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.NoError(t, handlerCtxErr)
}

func TestServer_ShutdownClosesIdleConnections(t *testing.T) {
	srv := &server.Server{
		Handler:         newDispatcher(t),
		ShutdownTimeout: 100 * time.Millisecond,
		Logger:          quiet,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	idle, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer func() { _ = idle.Close() }()

	assert.Eventually(t, func() bool { return srv.Stats().Active == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve still blocked on an idle connection after shutdown")
	}

	_ = idle.SetReadDeadline(time.Now().Add(time.Second))
	_, err = io.ReadAll(idle)
	assert.NoError(t, err, "server side closed the idle connection")
	assert.Equal(t, int64(0), srv.Stats().Active)
}

func TestServer_NilHandler(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	srv := &server.Server{}
	assert.Error(t, srv.Serve(context.Background(), ln))
}

func TestServer_ListenAndServeBadAddr(t *testing.T) {
	srv := &server.Server{Addr: "256.0.0.1:bad", Handler: newDispatcher(t), Logger: quiet}
	assert.Error(t, srv.ListenAndServe(context.Background()))
}
