package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func receive(t *testing.T, messages <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-messages:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestPublisher_MatchUpdated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, ch := NewInMemoryBus(discardLogger())
	defer bus.Close()

	payload := events.MatchUpdatedPayload{
		MatchID:      uuid.New(),
		TournamentID: uuid.New(),
		GroupID:      uuid.New(),
		RoundNumber:  2,
		Completed:    true,
	}
	topic := events.GroupScopedTopic(events.MatchUpdatedTopic, payload.GroupID)
	messages, err := ch.Subscribe(ctx, topic)
	require.NoError(t, err)

	pub := NewPublisher(bus.Publisher(), discardLogger())
	require.NoError(t, pub.PublishMatchUpdated(attr.WithCorrelationID(ctx, "req-17"), payload))

	msg := receive(t, messages)
	var got events.MatchUpdatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Equal(t, payload, got)
	assert.Equal(t, events.MatchUpdatedTopic, msg.Metadata.Get(EventTypeMetadataKey))
	assert.Equal(t, payload.GroupID.String(), msg.Metadata.Get("group_id"))
	assert.Equal(t, "req-17", middleware.MessageCorrelationID(msg))
}

func TestPublisher_TournamentCompleted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, ch := NewInMemoryBus(discardLogger())
	defer bus.Close()

	payload := events.TournamentCompletedPayload{
		TournamentID: uuid.New(),
		GroupID:      uuid.New(),
		WinnerID:     uuid.New(),
		CompletedAt:  time.Date(2026, 3, 31, 21, 0, 0, 0, time.UTC),
	}
	messages, err := ch.Subscribe(ctx, events.GroupScopedTopic(events.TournamentCompletedTopic, payload.GroupID))
	require.NoError(t, err)

	pub := NewPublisher(bus.Publisher(), discardLogger())
	require.NoError(t, pub.PublishTournamentCompleted(ctx, payload))

	msg := receive(t, messages)
	var got events.TournamentCompletedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Equal(t, payload.WinnerID, got.WinnerID)
	assert.True(t, payload.CompletedAt.Equal(got.CompletedAt))
	assert.Empty(t, middleware.MessageCorrelationID(msg))
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(topic string, messages ...*message.Message) error { return f.err }
func (f failingPublisher) Close() error { return nil }

func TestPublisher_WrapsTransportErrors(t *testing.T) {
	boom := errors.New("nats: timeout")
	pub := NewPublisher(failingPublisher{err: boom}, discardLogger())

	groupID := uuid.New()
	err := pub.PublishMatchUpdated(context.Background(), events.MatchUpdatedPayload{GroupID: groupID})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), events.GroupScopedTopic(events.MatchUpdatedTopic, groupID))
}

func TestStreamConfig_CapturesEveryGroup(t *testing.T) {
	cfg := StreamConfig()
	assert.Equal(t, events.StreamName, cfg.Name)
	assert.Equal(t, jetstream.FileStorage, cfg.Storage)
	assert.ElementsMatch(t, []string{
		"kart.match.updated.v1.*",
		"kart.tournament.completed.v1.*",
	}, cfg.Subjects)
}
