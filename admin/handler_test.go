package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/admin"
	"github.com/sagarc03/wirehttp/router"
	"github.com/sagarc03/wirehttp/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats server.Stats

func (s fixedStats) Stats() server.Stats { return server.Stats(s) }

func noop(context.Context, *wirehttp.Request, *wirehttp.Env) (*wirehttp.Response, error) {
	return wirehttp.StatusResponse(wirehttp.StatusOK), nil
}

func newRouter(t *testing.T, cfg admin.HandlerConfig) http.Handler {
	t.Helper()
	b := router.NewBuilder()
	require.NoError(t, b.Get("/", noop))
	require.NoError(t, b.Get("/echo/{str}", noop))
	require.NoError(t, b.Post("/files/{filename}", noop))

	stats := fixedStats{Accepted: 7, Active: 2, Served: 5}
	return admin.NewHandler(&cfg, b.Build(), stats).Router()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, newRouter(t, admin.HandlerConfig{}), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRoutes(t *testing.T) {
	w := get(t, newRouter(t, admin.HandlerConfig{}), "/routes")
	require.Equal(t, http.StatusOK, w.Code)

	var routes []router.RouteInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&routes))
	require.Len(t, routes, 3)
	assert.Equal(t, "/", routes[0].Path)
	assert.False(t, routes[0].Template)
	assert.Equal(t, "/echo/{str}", routes[1].Path)
	assert.Equal(t, []string{"str"}, routes[1].Params)
	assert.Equal(t, []string{"POST"}, routes[2].Methods)
}

func TestStats(t *testing.T) {
	w := get(t, newRouter(t, admin.HandlerConfig{}), "/stats")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"accepted":7,"active":2,"served":5}`, w.Body.String())
}

func TestRoutesMatch(t *testing.T) {
	h := newRouter(t, admin.HandlerConfig{})

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantBody string
	}{
		{
			name:     "template hit",
			target:   "/routes/match?target=/echo/abc",
			wantCode: http.StatusOK,
			wantBody: `{"method":"GET","target":"/echo/abc","path":"/echo/{str}","params":{"str":"abc"}}`,
		},
		{
			name:     "explicit method",
			target:   "/routes/match?method=POST&target=/files/a.txt",
			wantCode: http.StatusOK,
			wantBody: `{"method":"POST","target":"/files/a.txt","path":"/files/{filename}","params":{"filename":"a.txt"}}`,
		},
		{
			name:     "method not bound",
			target:   "/routes/match?method=DELETE&target=/",
			wantCode: http.StatusMethodNotAllowed,
			wantBody: `{"error":"method_not_allowed","message":"Route exists but method is not bound"}`,
		},
		{
			name:     "miss",
			target:   "/routes/match?target=/nope",
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"not_found","message":"No route matches target"}`,
		},
		{
			name:     "missing target",
			target:   "/routes/match",
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid_input","message":"target is required"}`,
		},
		{
			name:     "unknown method",
			target:   "/routes/match?method=FOO&target=/",
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid_method","message":"Unknown method"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestUnknownEndpoint(t *testing.T) {
	w := get(t, newRouter(t, admin.HandlerConfig{}), "/nope")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"Unknown admin endpoint"}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h := newRouter(t, admin.HandlerConfig{})
	req := httptest.NewRequest(http.MethodPost, "/stats", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORS(t *testing.T) {
	h := newRouter(t, admin.HandlerConfig{CORS: admin.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Disabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	newRouter(t, admin.HandlerConfig{}).ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
