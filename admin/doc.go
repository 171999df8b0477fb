// Package admin provides the operator HTTP surface that runs beside the raw
// TCP listener.
//
// It is built on chi and is only started when an admin port is configured.
//
// # Endpoints
//
//	GET /healthz              liveness check
//	GET /routes               registered routes in match order (JSON)
//	GET /routes/match         resolve ?method=GET&target=/echo/abc against the table
//	GET /stats                connection counters (JSON)
//
// Errors are written as JSON:
//
//	{"error": "not_found", "message": "No route matches target"}
//
// # CORS
//
// When CORSConfig.Enabled is set, the router is wrapped with go-chi/cors
// using the configured origins, methods and headers.
package admin
