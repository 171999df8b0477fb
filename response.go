package wirehttp

import (
	"maps"
	"strconv"
)

const Protocol = "HTTP/1.1"

type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusNoContent           StatusCode = 204
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusInternalServerError StatusCode = 500
)

var reasons = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNoContent:           "No Content",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusInternalServerError: "Internal Server Error",
}

// Reason returns the reason phrase for s, or "" if s is not in the table.
func (s StatusCode) Reason() string {
	return reasons[s]
}

func (s StatusCode) String() string {
	return strconv.Itoa(int(s)) + " " + s.Reason()
}

// Response is a handler result waiting to be serialized.
type Response struct {
	Protocol   string
	StatusCode StatusCode
	Reason     string
	Headers    map[string]string
	Body       []byte
}

// ResponseBuilder assembles a Response. A builder without a status builds
// a 500, and a 500 always drops headers and body.
type ResponseBuilder struct {
	protocol  string
	status    StatusCode
	hasStatus bool
	headers   map[string]string
	body      []byte
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		protocol: Protocol,
		headers:  make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(s StatusCode) *ResponseBuilder {
	b.status = s
	b.hasStatus = true
	return b
}

func (b *ResponseBuilder) Protocol(p string) *ResponseBuilder {
	b.protocol = p
	return b
}

func (b *ResponseBuilder) Header(key, value string) *ResponseBuilder {
	b.headers[key] = value
	return b
}

func (b *ResponseBuilder) Body(body []byte) *ResponseBuilder {
	b.body = body
	return b
}

// Text sets a text/plain body.
func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.body = []byte(s)
	return b.Header("Content-Type", "text/plain")
}

// File sets an application/octet-stream body.
func (b *ResponseBuilder) File(content []byte) *ResponseBuilder {
	b.body = content
	return b.Header("Content-Type", "application/octet-stream")
}

func (b *ResponseBuilder) Build() *Response {
	status := b.status
	if !b.hasStatus {
		status = StatusInternalServerError
	}

	res := &Response{
		Protocol:   b.protocol,
		StatusCode: status,
		Reason:     status.Reason(),
		Headers:    maps.Clone(b.headers),
		Body:       b.body,
	}
	if status == StatusInternalServerError {
		res.Headers = map[string]string{}
		res.Body = nil
	}
	return res
}

// StatusResponse is shorthand for a bodiless response with the given status.
func StatusResponse(s StatusCode) *Response {
	return NewResponse().Status(s).Build()
}
