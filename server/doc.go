// Package server drives raw TCP connections through a request handler.
//
// Each accepted connection is served on its own goroutine: one request is
// read, one response is written, and the connection is closed. There is no
// keep-alive.
//
//	srv := &server.Server{Addr: "127.0.0.1:4221", Handler: d}
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Admission
//
// With MaxConns > 0 the accept loop stops accepting once MaxConns connections
// are in flight and resumes as they finish. Zero means unbounded.
//
// # Shutdown
//
// Cancelling the context passed to Serve closes the listener. Serve then
// waits for in-flight connections to finish before returning nil. Handlers
// run under a context that is not cancelled by shutdown so that writes in
// progress complete. Connections still open ShutdownTimeout (default 30s)
// after cancellation are closed, so an idle client cannot hold shutdown
// open.
package server
