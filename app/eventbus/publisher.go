package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
)

// EventTypeMetadataKey names the unscoped topic of a published event.
const EventTypeMetadataKey = "event_type"

// Publisher turns domain payloads into group scoped watermill messages.
// It satisfies the match and tournament services' publisher interfaces.
type Publisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewPublisher(publisher message.Publisher, logger *slog.Logger) *Publisher {
	return &Publisher{publisher: publisher, logger: logger}
}

func (p *Publisher) PublishMatchUpdated(ctx context.Context, payload events.MatchUpdatedPayload) error {
	return p.publish(ctx, events.MatchUpdatedTopic, payload.GroupID, payload)
}

func (p *Publisher) PublishTournamentCompleted(ctx context.Context, payload events.TournamentCompletedPayload) error {
	return p.publish(ctx, events.TournamentCompletedTopic, payload.GroupID, payload)
}

func (p *Publisher) publish(ctx context.Context, baseTopic string, groupID uuid.UUID, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", baseTopic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(EventTypeMetadataKey, baseTopic)
	msg.Metadata.Set("group_id", groupID.String())
	if id := attr.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	msg.SetContext(ctx)

	topic := events.GroupScopedTopic(baseTopic, groupID)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
	return nil
}
