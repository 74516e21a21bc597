package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/kart-bot/app/eventbus"
	"github.com/Black-And-White-Club/kart-bot/app/modules/match"
	"github.com/Black-And-White-Club/kart-bot/app/modules/tournament"
	"github.com/Black-And-White-Club/kart-bot/config"
	"github.com/Black-And-White-Club/kart-bot/db/bundb"
	"github.com/Black-And-White-Club/kart-bot/pkg/httpx"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const serviceName = "kart-bot"

// App holds the process wide dependencies and the module instances.
type App struct {
	Config           *config.Config
	Logger           *slog.Logger
	DB               *bun.DB
	Bus              *eventbus.Bus
	MatchModule      *match.Module
	TournamentModule *tournament.Module

	server *http.Server
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	db, err := bundb.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db

	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewNATSBus(ctx, cfg.NATS.URL, logger)
		if err != nil {
			app.closeQuietly(ctx)
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
		app.Bus = bus
	} else {
		logger.WarnContext(ctx, "NATS URL not set, events stay in process")
		app.Bus, _ = eventbus.NewInMemoryBus(logger)
	}
	publisher := eventbus.NewPublisher(app.Bus.Publisher(), logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var opMetrics metrics.OperationMetrics = metrics.NewNoop()
	var metricsHandler http.Handler
	if cfg.Observability.MetricsEnabled {
		pm, err := metrics.NewPrometheusMetrics(registry, "kart_bot")
		if err != nil {
			app.closeQuietly(ctx)
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opMetrics = pm
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	tracer := otel.Tracer(serviceName)

	app.MatchModule, err = match.NewMatchModule(ctx, logger, tracer, opMetrics, db, publisher, cfg.League)
	if err != nil {
		app.closeQuietly(ctx)
		return nil, fmt.Errorf("failed to initialize match module: %w", err)
	}
	app.TournamentModule, err = tournament.NewTournamentModule(ctx, logger, tracer, opMetrics, db, cfg.Postgres.DSN, publisher, cfg.League)
	if err != nil {
		app.closeQuietly(ctx)
		return nil, fmt.Errorf("failed to initialize tournament module: %w", err)
	}

	handler := NewRouter(RouterConfig{
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimiter: httpx.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst),
		Health:      app.healthCheck,
		Metrics:     metricsHandler,
		Modules:     []Module{app.MatchModule.Handlers, app.TournamentModule.Handlers},
	})
	app.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return app, nil
}

func (app *App) healthCheck(ctx context.Context) error {
	if err := app.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return app.TournamentModule.Queue.HealthCheck(ctx)
}

// Close stops the server, the queue, the event bus and the database, in
// that order.
func (app *App) Close(ctx context.Context) error {
	var errs []error
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if app.TournamentModule != nil {
		if err := app.TournamentModule.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if app.Bus != nil {
		if err := app.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) closeQuietly(ctx context.Context) {
	if err := app.Close(ctx); err != nil {
		app.Logger.ErrorContext(ctx, "Cleanup after failed start", attr.Error(err))
	}
}
