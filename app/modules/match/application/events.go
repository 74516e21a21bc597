package matchservice

import (
	"context"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
)

// EventPublisher delivers match notifications. Implementations must not
// block on slow consumers.
type EventPublisher interface {
	PublishMatchUpdated(ctx context.Context, payload events.MatchUpdatedPayload) error
}

type nopPublisher struct{}

func (nopPublisher) PublishMatchUpdated(context.Context, events.MatchUpdatedPayload) error {
	return nil
}

// publishMatchUpdated runs after commit. A failed publish never undoes the
// stored result, so the error is only logged.
func (s *MatchService) publishMatchUpdated(ctx context.Context, payload events.MatchUpdatedPayload) {
	if err := s.publisher.PublishMatchUpdated(ctx, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish match update",
			attr.UUID("match_id", payload.MatchID),
			attr.Int("round_number", payload.RoundNumber),
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
}
