package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamMaxAge     = 30 * 24 * time.Hour
	duplicatesWindow = 2 * time.Minute
)

// StreamConfig is the stream every kart event lands in.
func StreamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:       events.StreamName,
		Subjects:   events.Subjects,
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: duplicatesWindow,
	}
}

// EnsureStream creates the event stream, or updates its subjects if it
// already exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) error {
	cfg := StreamConfig()
	stream, err := js.CreateOrUpdateStream(ctx, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to provision JetStream stream",
			attr.String("stream", cfg.Name),
			attr.Error(err),
		)
		return fmt.Errorf("failed to provision stream %s: %w", cfg.Name, err)
	}

	info := stream.CachedInfo()
	logger.InfoContext(ctx, "JetStream stream ready",
		attr.String("stream", info.Config.Name),
		attr.Any("subjects", info.Config.Subjects),
		attr.Int64("messages", int64(info.State.Msgs)),
	)
	return nil
}
