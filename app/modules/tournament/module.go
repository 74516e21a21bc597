package tournament

import (
	"context"
	"fmt"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/application"
	tournamenthandlers "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/handlers"
	tournamentqueue "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/queue"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/config"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the tournament module.
type Module struct {
	Service  *tournamentservice.TournamentService
	Handlers *tournamenthandlers.TournamentHandlers
	Queue    *tournamentqueue.Service
	logger   *slog.Logger
}

// NewTournamentModule creates the tournament service and the River queue
// that closes tournaments on schedule.
func NewTournamentModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
	db *bun.DB,
	dsn string,
	publisher tournamentservice.EventPublisher,
	league config.LeagueConfig,
) (*Module, error) {
	logger.InfoContext(ctx, "tournament.NewTournamentModule initializing")

	loc, err := league.Location()
	if err != nil {
		return nil, err
	}

	repo := tournamentdb.NewRepository(db)
	service := tournamentservice.NewTournamentService(repo, logger, m, tracer, db,
		tournamentservice.WithPublisher(publisher),
		tournamentservice.WithLocation(loc),
	)

	// the queue's worker completes tournaments through the service, and the
	// service schedules through the queue
	queue, err := tournamentqueue.NewService(ctx, db, logger, dsn, league.QueueWorkers, m, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament queue: %w", err)
	}
	service.SetScheduler(queue)

	return &Module{
		Service:  service,
		Handlers: tournamenthandlers.NewTournamentHandlers(service, logger),
		Queue:    queue,
		logger:   logger,
	}, nil
}

// Run starts the queue workers.
func (m *Module) Run(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting tournament module")
	return m.Queue.Start(ctx)
}

// Close stops the queue, letting running jobs finish until ctx expires.
func (m *Module) Close(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Stopping tournament module")
	if err := m.Queue.Stop(ctx); err != nil {
		return fmt.Errorf("error closing tournament queue: %w", err)
	}
	return nil
}
