package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/kart-bot/app"
	"github.com/Black-And-White-Club/kart-bot/config"
	"github.com/Black-And-White-Club/kart-bot/db/bundb"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 20 * time.Second

func main() {
	cliApp := &cli.App{
		Name:  "kart-bot",
		Usage: "kart league match and tournament service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "run database migrations before serving",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "serve the HTTP API and run the tournament queue",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply River and module migrations, then exit",
				Action: func(c *cli.Context) error {
					cfg, logger, err := setup(c)
					if err != nil {
						return err
					}
					return migrate(c.Context, cfg, logger)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Observability.SlogLevel(),
	})).With(
		attr.String("service", "kart-bot"),
		attr.String("environment", cfg.Observability.Environment),
	)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := bundb.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	return bundb.Migrate(ctx, db, cfg.Postgres.DSN, logger)
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("migrate") {
		if err := migrate(ctx, cfg, logger); err != nil {
			return err
		}
	}

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	runErr := application.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := application.Close(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Shutdown finished with errors", attr.Error(err))
	}
	logger.Info("Application shut down gracefully")

	return runErr
}
