package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/router"
)

// Register binds the stock routes.
func Register(b *router.Builder) error {
	routes := []struct {
		method   wirehttp.Method
		template string
		handler  wirehttp.Handler
	}{
		{wirehttp.MethodGet, "/", Index},
		{wirehttp.MethodGet, "/user-agent", UserAgent},
		{wirehttp.MethodGet, "/echo/{str}", Echo},
		{wirehttp.MethodGet, "/files/{filename}", GetFile},
		{wirehttp.MethodPost, "/files/{filename}", CreateFile},
	}

	for _, r := range routes {
		if err := b.Handle(r.method, r.template, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func Index(_ context.Context, _ *wirehttp.Request, _ *wirehttp.Env) (*wirehttp.Response, error) {
	return wirehttp.StatusResponse(wirehttp.StatusOK), nil
}

func UserAgent(_ context.Context, req *wirehttp.Request, _ *wirehttp.Env) (*wirehttp.Response, error) {
	ua, ok := req.Header("User-Agent")
	if !ok {
		return nil, fmt.Errorf("user agent: %w: User-Agent", wirehttp.ErrMissingHeader)
	}
	return wirehttp.NewResponse().Status(wirehttp.StatusOK).Text(ua).Build(), nil
}

func Echo(_ context.Context, req *wirehttp.Request, _ *wirehttp.Env) (*wirehttp.Response, error) {
	s, ok := req.PathParam("str")
	if !ok {
		return nil, fmt.Errorf("echo: %w: str", wirehttp.ErrMissingParam)
	}
	return wirehttp.NewResponse().Status(wirehttp.StatusOK).Text(strings.TrimSpace(s)).Build(), nil
}

// GetFile answers 404 for anything that prevents reading the file.
func GetFile(ctx context.Context, req *wirehttp.Request, env *wirehttp.Env) (*wirehttp.Response, error) {
	name, err := fileName(req, env)
	if err != nil {
		return nil, err
	}

	f, err := env.Files.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, wirehttp.ErrNotFound) {
			slog.WarnContext(ctx, "read file failed", "file", name, "err", err)
		}
		return wirehttp.StatusResponse(wirehttp.StatusNotFound), nil
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		slog.WarnContext(ctx, "read file failed", "file", name, "err", err)
		return wirehttp.StatusResponse(wirehttp.StatusNotFound), nil
	}

	return wirehttp.NewResponse().Status(wirehttp.StatusOK).File(content).Build(), nil
}

// CreateFile answers 201 on success and 404 on any write failure.
func CreateFile(ctx context.Context, req *wirehttp.Request, env *wirehttp.Env) (*wirehttp.Response, error) {
	name, err := fileName(req, env)
	if err != nil {
		return nil, err
	}

	result, err := env.Files.Write(ctx, name, bytes.NewReader(req.Body))
	if err != nil {
		slog.WarnContext(ctx, "write file failed", "file", name, "err", err)
		return wirehttp.StatusResponse(wirehttp.StatusNotFound), nil
	}

	slog.DebugContext(ctx, "file written", "file", name, "bytes", result.BytesWritten, "etag", result.Etag)
	return wirehttp.StatusResponse(wirehttp.StatusCreated), nil
}

func fileName(req *wirehttp.Request, env *wirehttp.Env) (string, error) {
	name, ok := req.PathParam("filename")
	if !ok {
		return "", fmt.Errorf("files: %w: filename", wirehttp.ErrMissingParam)
	}
	if env == nil || env.Files == nil {
		return "", fmt.Errorf("files: no working directory: %w", wirehttp.ErrInternal)
	}
	name = strings.TrimSpace(name)
	if !wirehttp.IsValidFileName(name) {
		return "", fmt.Errorf("files: %q: %w", name, wirehttp.ErrNotFound)
	}
	return name, nil
}
