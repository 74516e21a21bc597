package match

import (
	"context"
	"fmt"
	"log/slog"

	matchservice "github.com/Black-And-White-Club/kart-bot/app/modules/match/application"
	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchhandlers "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/handlers"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/config"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the match module.
type Module struct {
	Service  *matchservice.MatchService
	Handlers *matchhandlers.MatchHandlers
}

// NewMatchModule creates and initializes a new match module.
func NewMatchModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
	db *bun.DB,
	publisher matchservice.EventPublisher,
	league config.LeagueConfig,
) (*Module, error) {
	logger.InfoContext(ctx, "match.NewMatchModule initializing")

	mode, err := matchdomain.ParseAllocationMode(league.DefaultTeamMode)
	if err != nil {
		return nil, fmt.Errorf("invalid league default team mode: %w", err)
	}

	repo := matchdb.NewRepository(db)
	service := matchservice.NewMatchService(repo, logger, m, tracer, db,
		matchservice.WithPublisher(publisher),
		matchservice.WithStartingRating(league.StartingRating),
	)

	return &Module{
		Service:  service,
		Handlers: matchhandlers.NewMatchHandlers(service, logger, mode),
	}, nil
}
