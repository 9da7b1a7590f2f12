package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsonwriter "github.com/dgellow/openid-selector/internal/json"
	"github.com/dgellow/openid-selector/internal/log"
)

// HTTPServer manages the HTTP server lifecycle
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer creates a new HTTP server with the given handler and address
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name,omitempty"`
	Providers int    `json:"providers"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	name      string
	providers func() int
}

// NewHealthHandler creates a new health handler. providers reports how many
// providers are currently loaded; zero makes the check fail.
func NewHealthHandler(name string, providers func() int) *HealthHandler {
	return &HealthHandler{name: name, providers: providers}
}

// ServeHTTP implements http.Handler for health checks
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Name: h.name}
	if h.providers != nil {
		resp.Providers = h.providers()
		if resp.Providers == 0 {
			resp.Status = "no_providers"
			_ = jsonwriter.WriteResponse(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	_ = jsonwriter.Write(w, resp)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	log.LogInfoWithFields("http", "HTTP server starting", map[string]any{
		"addr": h.server.Addr,
	})

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	log.LogInfoWithFields("http", "HTTP server stopping", map[string]any{
		"addr": h.server.Addr,
	})

	if err := h.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.LogInfoWithFields("http", "HTTP server stopped", map[string]any{
		"addr": h.server.Addr,
	})
	return nil
}
