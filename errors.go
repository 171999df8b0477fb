package wirehttp

import "errors"

var (
	// ErrMalformedRequest is returned when the request head cannot be parsed
	ErrMalformedRequest = errors.New("malformed request")
	// ErrInvalidMethod is returned when the request line names an unknown method
	ErrInvalidMethod = errors.New("invalid request method")
	// ErrBodyTooLarge is returned when Content-Length exceeds the configured cap
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrRouteNotFound is returned when no route matches the request target
	ErrRouteNotFound = errors.New("route not found")
	// ErrMethodNotAllowed is returned when the path matches but the method is not bound
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingHeader is returned when a handler requires a header the request lacks
	ErrMissingHeader = errors.New("missing header")
	// ErrMissingParam is returned when a handler requires a path parameter that was not bound
	ErrMissingParam = errors.New("missing path parameter")
	// ErrInvalidEncoding is returned when a body that must be text is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid text encoding")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
