package internal

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgellow/openid-selector/internal/config"
	"github.com/dgellow/openid-selector/internal/crypto"
	"github.com/dgellow/openid-selector/internal/log"
	"github.com/dgellow/openid-selector/internal/provider"
	"github.com/dgellow/openid-selector/internal/server"
)

const (
	csrfKeyPurpose  = "openid-selector csrf"
	csrfTokenTTL    = 2 * time.Hour
	shutdownTimeout = 30 * time.Second
)

// Selector is the assembled picker application
type Selector struct {
	config     config.Config
	registry   *provider.Registry
	metrics    *server.Metrics
	handler    http.Handler
	httpServer *server.HTTPServer
}

// NewSelector builds the provider registry, the CSRF signer and the HTTP
// handler from a loaded config
func NewSelector(cfg config.Config) (*Selector, error) {
	registry, err := provider.NewRegistry(cfg.Providers.File)
	if err != nil {
		return nil, fmt.Errorf("loading providers: %w", err)
	}

	metrics := server.NewMetrics()
	registry.OnReload(metrics.RecordReload)

	key, err := crypto.DeriveKey([]byte(cfg.Server.CSRFSecret), csrfKeyPurpose)
	if err != nil {
		return nil, fmt.Errorf("deriving CSRF key: %w", err)
	}
	csrf := crypto.NewCSRFProtection(key, csrfTokenTTL)

	handlers, err := server.NewPickerHandlers(cfg.Server, cfg.Picker, registry, csrf, metrics)
	if err != nil {
		return nil, fmt.Errorf("building picker handlers: %w", err)
	}

	handler := server.NewRouter(server.RouterConfig{
		Server:   cfg.Server,
		Handlers: handlers,
		Health: server.NewHealthHandler(cfg.Server.Name, func() int {
			return registry.Tables().Len()
		}),
		Metrics: metrics,
	})

	tables := registry.Tables()
	log.LogInfoWithFields("selector", "Provider tables loaded", map[string]any{
		"source": sourceName(registry),
		"large":  len(tables.Large),
		"small":  len(tables.Small),
	})

	return &Selector{
		config:     cfg,
		registry:   registry,
		metrics:    metrics,
		handler:    handler,
		httpServer: server.NewHTTPServer(handler, cfg.Server.Addr),
	}, nil
}

func sourceName(r *provider.Registry) string {
	if p := r.Path(); p != "" {
		return p
	}
	return "embedded"
}

// Handler returns the complete HTTP handler
func (s *Selector) Handler() http.Handler {
	return s.handler
}

// Registry returns the provider registry
func (s *Selector) Registry() *provider.Registry {
	return s.registry
}

// Run serves HTTP and, when enabled, watches the provider file until ctx is
// cancelled, a signal arrives or a component fails
func (s *Selector) Run(ctx context.Context) error {
	log.LogInfoWithFields("selector", "Starting OpenID selector", map[string]any{
		"addr":     s.config.Server.Addr,
		"baseURL":  s.config.Server.BaseURL,
		"basePath": s.config.Server.BasePath,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if s.config.Providers.Watch && s.registry.Path() != "" {
		g.Go(func() error {
			return s.registry.Watch(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.LogInfoWithFields("selector", "Starting graceful shutdown", map[string]any{
			"timeout": shutdownTimeout.String(),
		})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.LogErrorWithFields("selector", "Shutting down due to error", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	log.LogInfoWithFields("selector", "Application shutdown complete", nil)
	return nil
}
