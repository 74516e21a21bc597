// Package eventbus carries domain events to NATS JetStream, or to an
// in-process channel when no NATS server is configured.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Bus owns the watermill publisher and, for NATS, the connection used to
// manage streams.
type Bus struct {
	publisher message.Publisher
	conn      *nc.Conn
	logger    *slog.Logger
}

// NewNATSBus connects to NATS, makes sure the event stream exists and
// returns a JetStream backed bus.
func NewNATSBus(ctx context.Context, natsURL string, logger *slog.Logger) (*Bus, error) {
	options := []nc.Option{
		nc.Name("kart-bot"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(time.Second),
		nc.MaxReconnects(-1),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("NATS subscription error", attr.String("subject", s.Subject), attr.Error(err))
				return
			}
			logger.Error("NATS connection error", attr.Error(err))
		}),
	}

	conn, err := nc.Connect(natsURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if err := EnsureStream(ctx, js, logger); err != nil {
		conn.Close()
		return nil, err
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         &nats.NATSMarshaler{},
			SubjectCalculator: nats.DefaultSubjectCalculator,
			JetStream: nats.JetStreamConfig{
				Disabled:      false,
				AutoProvision: false,
				TrackMsgId:    true,
			},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill NATS publisher: %w", err)
	}

	logger.InfoContext(ctx, "Event bus connected to NATS", attr.String("url", conn.ConnectedUrlRedacted()))
	return &Bus{publisher: publisher, conn: conn, logger: logger}, nil
}

// NewInMemoryBus keeps events inside the process. Nothing is delivered
// unless something subscribes to the returned bus's channel.
func NewInMemoryBus(logger *slog.Logger) (*Bus, *gochannel.GoChannel) {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &Bus{publisher: ch, logger: logger}, ch
}

func (b *Bus) Publisher() message.Publisher { return b.publisher }

// Close closes the publisher and then the NATS connection.
func (b *Bus) Close() error {
	var errs []error
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if b.conn != nil {
		b.conn.Close()
	}
	return errors.Join(errs...)
}
