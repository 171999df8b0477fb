// Package api holds the stock application handlers and binds them to a
// router.Builder:
//
//	GET  /                   200, empty body
//	GET  /user-agent         echoes the User-Agent header as text/plain
//	GET  /echo/{str}         echoes the path parameter as text/plain
//	GET  /files/{filename}   serves a file from the working directory
//	POST /files/{filename}   writes the request body into the working directory
//
// Handlers never panic on missing input; they return wirehttp errors and let
// the dispatcher choose the status.
package api
