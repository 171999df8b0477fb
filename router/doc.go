// Package router maps (method, target) pairs to handlers.
//
// Routes are registered on a Builder and frozen into a Table before the
// server starts. A Table is immutable and safe for concurrent lookups.
//
// # Path Templates
//
// A template segment written as {name} is a placeholder. It matches one
// non-empty path segment drawn from [A-Za-z0-9_.-] and binds it to name:
//
//	b := router.NewBuilder()
//	_ = b.Get("/echo/{str}", echo)
//	_ = b.Get("/files/{filename}", getFile)
//	_ = b.Post("/files/{filename}", createFile)
//	table := b.Build()
//
//	m, err := table.Lookup(wirehttp.MethodGet, "/echo/abc")
//	// m.Params["str"] == "abc"
//
// # Precedence
//
// An exact literal route always beats a template. Among templates, the one
// with fewer placeholders is tried first; ties keep registration order. The
// first template whose pattern matches the target decides the outcome, even
// when it does not bind the requested method.
package router
