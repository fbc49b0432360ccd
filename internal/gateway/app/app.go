package app

import (
	"context"
	"fmt"
	"net/http"

	"genstudio/internal/config"
	"genstudio/internal/gateway/handler"
	"genstudio/internal/gateway/server"
	"genstudio/internal/genclient"
	"genstudio/internal/metrics"
	"genstudio/internal/session"

	"github.com/rs/zerolog"
)

type App struct {
	server *server.Server
	store  *session.Store
}

// New wires the gateway. It fails when the Gemini client cannot be built, so
// the process never serves intents without a credential.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	// Dependencies
	m := metrics.New()
	gen, err := genclient.NewGemini(ctx, cfg.APIKey,
		genclient.WithModels(cfg.Models.Image, cfg.Models.Text),
		genclient.WithLogger(log.With().Str("component", "genclient").Logger()),
		genclient.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}
	return NewWithGenerator(cfg, log, gen, m), nil
}

// NewWithGenerator wires the gateway around an existing generator.
func NewWithGenerator(cfg *config.Config, log zerolog.Logger, gen session.Generator, m *metrics.Metrics) *App {
	ctrlLog := log.With().Str("component", "session").Logger()
	store := session.NewStore(cfg.Session.Max, cfg.Session.TTL, func() *session.Controller {
		return session.NewController(gen, session.WithLogger(ctrlLog), session.WithMetrics(m))
	}, m)

	sessionHandler := handler.NewSessionHandler(log.With().Str("component", "handler").Logger(), cfg.UploadMaxMemory)

	// Routing & Server
	mux := server.NewMux(sessionHandler, store, m.Handler(), cfg.CORSOrigins, log)
	srv := server.New(cfg.Port, mux, log)

	return &App{
		server: srv,
		store:  store,
	}
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}
