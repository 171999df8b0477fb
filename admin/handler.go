package admin

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/wirehttp"
	"github.com/sagarc03/wirehttp/router"
	"github.com/sagarc03/wirehttp/server"
)

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
}

// RouteTable is the read side of a frozen route table.
type RouteTable interface {
	Routes() []router.RouteInfo
	Lookup(method wirehttp.Method, target string) (router.Match, error)
}

// StatsSource reports connection counters.
type StatsSource interface {
	Stats() server.Stats
}

// MatchResult describes how a target resolved against the route table.
type MatchResult struct {
	Method string            `json:"method"`
	Target string            `json:"target"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params"`
}

type Handler struct {
	config HandlerConfig
	routes RouteTable
	stats  StatsSource
}

func NewHandler(config *HandlerConfig, routes RouteTable, stats StatsSource) *Handler {
	return &Handler{
		config: *config,
		routes: routes,
		stats:  stats,
	}
}

// Router returns an http.Handler serving the admin endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	r.Get("/routes", h.handleRoutes)
	r.Get("/routes/match", h.handleMatch)
	r.Get("/stats", h.handleStats)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Unknown admin endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRoutes(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.routes.Routes())
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		WriteError(w, http.StatusBadRequest, "invalid_input", "target is required")
		return
	}

	method := wirehttp.MethodGet
	if m := r.URL.Query().Get("method"); m != "" {
		method = wirehttp.ParseMethod(m)
		if !method.IsValid() {
			WriteError(w, http.StatusBadRequest, "invalid_method", "Unknown method")
			return
		}
	}

	m, err := h.routes.Lookup(method, target)
	if err != nil {
		if errors.Is(err, wirehttp.ErrMethodNotAllowed) {
			WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Route exists but method is not bound")
			return
		}
		WriteError(w, http.StatusNotFound, "not_found", "No route matches target")
		return
	}

	_ = WriteJSON(w, http.StatusOK, MatchResult{
		Method: string(method),
		Target: target,
		Path:   m.Path,
		Params: m.Params,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.stats.Stats())
}
