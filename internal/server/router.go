package server

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgellow/openid-selector/internal/config"
	jsonwriter "github.com/dgellow/openid-selector/internal/json"
	"github.com/dgellow/openid-selector/internal/log"
)

// RouterConfig holds everything the router mounts
type RouterConfig struct {
	Server   config.ServerConfig
	Handlers *PickerHandlers
	Health   http.Handler
	// Metrics is served at /metrics and instruments every route when set
	Metrics *Metrics
}

// NewRouter mounts the picker under the base path and the operational
// endpoints at the root, wrapped in the standard middleware chain
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(cfg.Metrics))

	if cfg.Health != nil {
		r.Method(http.MethodGet, "/health", cfg.Health)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	prefix := strings.TrimSuffix(cfg.Server.BasePath, "/")
	h := cfg.Handlers

	r.Get(prefix+"/", h.PageHandler)
	if prefix != "" {
		r.Get(prefix, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, prefix+"/", http.StatusMovedPermanently)
		})
	}
	r.Get(prefix+"/select", h.SelectHandler)
	r.Post(prefix+"/submit", h.SubmitHandler)

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		// embedded at build time
		panic(err)
	}
	r.Handle(prefix+"/assets/*", http.StripPrefix(prefix+"/assets/", http.FileServer(http.FS(assets))))

	if dir := cfg.Server.StaticDir; dir != "" {
		log.LogInfoWithFields("server", "Serving static files", map[string]any{
			"dir":  dir,
			"path": prefix + "/static/",
		})
		r.Handle(prefix+"/static/*", http.StripPrefix(prefix+"/static/", http.FileServer(http.Dir(dir))))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonwriter.WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonwriter.WriteMethodNotAllowed(w)
	})

	return ChainMiddleware(r,
		NewSecurityHeadersMiddleware(),
		NewRecoverMiddleware("http"),
		NewLoggerMiddleware("http"),
		NewRequestIDMiddleware(),
	)
}
