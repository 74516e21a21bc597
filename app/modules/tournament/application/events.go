package tournamentservice

import (
	"context"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
)

type EventPublisher interface {
	PublishTournamentCompleted(ctx context.Context, payload events.TournamentCompletedPayload) error
}

type nopPublisher struct{}

func (nopPublisher) PublishTournamentCompleted(context.Context, events.TournamentCompletedPayload) error {
	return nil
}

func (s *TournamentService) publishCompleted(ctx context.Context, payload events.TournamentCompletedPayload) {
	if err := s.publisher.PublishTournamentCompleted(ctx, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish tournament completion",
			attr.UUID("tournament_id", payload.TournamentID),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
}
