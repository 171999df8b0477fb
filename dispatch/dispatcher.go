package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/protocol"
	"github.com/sagarc03/wirehttp/router"
)

// DefaultEncodings is the scheme set used when Config.Encodings is empty.
var DefaultEncodings = []string{"gzip"}

type Config struct {
	// Encodings lists the Content-Encoding schemes the server advertises.
	Encodings []string
	// MethodNotAllowed answers 405 instead of 404 when the path matches but
	// the method is not bound.
	MethodNotAllowed bool
	MaxHeaderBytes   int
	MaxBodyBytes     int64
	Logger           *slog.Logger
}

// Dispatcher is safe for concurrent use once constructed.
type Dispatcher struct {
	table            *router.Table
	env              *wirehttp.Env
	parser           protocol.Parser
	encodings        []string
	methodNotAllowed bool
	logger           *slog.Logger
}

func New(cfg *Config, table *router.Table, env *wirehttp.Env) *Dispatcher {
	encodings := slices.Clone(cfg.Encodings)
	if len(encodings) == 0 {
		encodings = slices.Clone(DefaultEncodings)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		table: table,
		env:   env,
		parser: protocol.Parser{
			MaxHeaderBytes: cfg.MaxHeaderBytes,
			MaxBodyBytes:   cfg.MaxBodyBytes,
		},
		encodings:        encodings,
		methodNotAllowed: cfg.MethodNotAllowed,
		logger:           logger,
	}
}

// Handle reads one request from r and returns the serialized response.
func (d *Dispatcher) Handle(ctx context.Context, r io.Reader) []byte {
	return protocol.Serialize(d.Dispatch(ctx, r))
}

// Dispatch reads one request from r and returns the response to send.
func (d *Dispatcher) Dispatch(ctx context.Context, r io.Reader) *wirehttp.Response {
	start := time.Now()

	req, err := d.parser.Parse(r)
	if err != nil {
		d.logger.DebugContext(ctx, "bad request", "err", err)
		return wirehttp.StatusResponse(wirehttp.StatusBadRequest)
	}

	res := d.route(ctx, req)

	d.logger.InfoContext(ctx, "request",
		"method", req.Method,
		"target", req.Target,
		"status", int(res.StatusCode),
		"duration", time.Since(start),
	)
	return res
}

func (d *Dispatcher) route(ctx context.Context, req *wirehttp.Request) *wirehttp.Response {
	m, err := d.table.Lookup(req.Method, req.Target)
	if err != nil {
		if d.methodNotAllowed && errors.Is(err, wirehttp.ErrMethodNotAllowed) {
			return wirehttp.StatusResponse(wirehttp.StatusMethodNotAllowed)
		}
		return wirehttp.StatusResponse(wirehttp.StatusNotFound)
	}

	res := d.invoke(ctx, m.Handler, req.WithPathParams(m.Params))
	if res.StatusCode != wirehttp.StatusInternalServerError {
		if scheme, ok := Negotiate(req, d.encodings); ok {
			res.Headers["Content-Encoding"] = scheme
		}
	}
	return res
}

// invoke runs h and converts errors, panics, nil responses and statuses
// outside the reason table into responses.
func (d *Dispatcher) invoke(ctx context.Context, h wirehttp.Handler, req *wirehttp.Request) (res *wirehttp.Response) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.ErrorContext(ctx, "handler panic", "target", req.Target, "panic", fmt.Sprint(p))
			res = wirehttp.StatusResponse(wirehttp.StatusInternalServerError)
		}
	}()

	res, err := h(ctx, req, d.env)
	if err != nil {
		return d.errorResponse(ctx, req, err)
	}
	if res == nil {
		d.logger.ErrorContext(ctx, "handler returned no response", "target", req.Target)
		return wirehttp.StatusResponse(wirehttp.StatusInternalServerError)
	}
	if res.StatusCode.Reason() == "" {
		d.logger.ErrorContext(ctx, "handler returned unknown status", "target", req.Target, "status", int(res.StatusCode))
		return wirehttp.StatusResponse(wirehttp.StatusInternalServerError)
	}
	if res.Headers == nil {
		res.Headers = make(map[string]string)
	}
	return res
}

func (d *Dispatcher) errorResponse(ctx context.Context, req *wirehttp.Request, err error) *wirehttp.Response {
	status := StatusForError(err)
	if status == wirehttp.StatusInternalServerError {
		d.logger.ErrorContext(ctx, "handler error", "target", req.Target, "err", err)
	} else {
		d.logger.DebugContext(ctx, "handler rejected request", "target", req.Target, "err", err)
	}
	return wirehttp.StatusResponse(status)
}

// StatusForError maps a handler error to the status sent to the client.
func StatusForError(err error) wirehttp.StatusCode {
	switch {
	case errors.Is(err, wirehttp.ErrNotFound), errors.Is(err, wirehttp.ErrRouteNotFound):
		return wirehttp.StatusNotFound
	case errors.Is(err, wirehttp.ErrInvalidInput),
		errors.Is(err, wirehttp.ErrMissingHeader),
		errors.Is(err, wirehttp.ErrMissingParam),
		errors.Is(err, wirehttp.ErrInvalidEncoding),
		errors.Is(err, wirehttp.ErrMalformedRequest),
		errors.Is(err, wirehttp.ErrInvalidMethod):
		return wirehttp.StatusBadRequest
	default:
		return wirehttp.StatusInternalServerError
	}
}

// Negotiate picks the first scheme in the request's Accept-Encoding list that
// appears in supported. Candidates are trimmed; quality values are not
// interpreted.
func Negotiate(req *wirehttp.Request, supported []string) (string, bool) {
	accept, ok := req.Header("Accept-Encoding")
	if !ok {
		return "", false
	}
	for candidate := range strings.SplitSeq(accept, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && slices.Contains(supported, candidate) {
			return candidate, true
		}
	}
	return "", false
}
