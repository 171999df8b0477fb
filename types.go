package wirehttp

import (
	"context"
	"maps"
	"unicode/utf8"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodDelete  Method = "DELETE"
	MethodConnect Method = "CONNECT"
	MethodTrace   Method = "TRACE"

	// MethodUnknown marks a request line whose method token is not recognised.
	// It is never a valid route key.
	MethodUnknown Method = "UNKNOWN"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodHead,
		MethodOptions, MethodDelete, MethodConnect, MethodTrace:
		return true
	default:
		return false
	}
}

// ParseMethod maps a request-line token to a Method. Matching is
// case-sensitive; anything unrecognised yields MethodUnknown.
func ParseMethod(s string) Method {
	m := Method(s)
	if !m.IsValid() {
		return MethodUnknown
	}
	return m
}

// Request is a parsed HTTP request. It is built once per connection and
// must not be mutated afterwards; use WithPathParams to derive a copy.
type Request struct {
	Method  Method
	Target  string
	Version string
	// Headers keeps keys exactly as received. Duplicate keys keep the last value.
	Headers    map[string]string
	Body       []byte
	PathParams map[string]string
}

// Header returns the value stored under key and whether it was present.
func (r *Request) Header(key string) (string, bool) {
	v, ok := r.Headers[key]
	return v, ok
}

// PathParam returns the segment bound to a route placeholder.
func (r *Request) PathParam(name string) (string, bool) {
	v, ok := r.PathParams[name]
	return v, ok
}

// Text decodes the body as UTF-8. Returns ErrInvalidEncoding for any other byte sequence.
func (r *Request) Text() (string, error) {
	if !utf8.Valid(r.Body) {
		return "", ErrInvalidEncoding
	}
	return string(r.Body), nil
}

// WithPathParams returns a shallow copy of r carrying params.
func (r *Request) WithPathParams(params map[string]string) *Request {
	c := *r
	c.PathParams = maps.Clone(params)
	if c.PathParams == nil {
		c.PathParams = map[string]string{}
	}
	return &c
}

// Env is the shared, read-only context passed to every handler invocation.
type Env struct {
	// WorkDir is the directory the /files routes read from and write to.
	WorkDir string
	Files   FileStorage
}

// Handler serves one routed request. Returning an error lets the dispatcher
// pick the status: ErrNotFound maps to 404, input errors to 400 and
// anything else to 500.
type Handler func(ctx context.Context, req *Request, env *Env) (*Response, error)

type SaveResult struct {
	BytesWritten int64
	Etag         string
}
