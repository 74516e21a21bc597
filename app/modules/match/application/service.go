package matchservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/clock"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/Black-And-White-Club/kart-bot/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName = "match"

	// DefaultStartingRating seeds both ladders for players seen for the first time.
	DefaultStartingRating = 1200
)

// MatchService runs the match lifecycle: team allocation, lineups, track
// draws and result recording.
type MatchService struct {
	repo        matchdb.Repository
	publisher   EventPublisher
	logger      *slog.Logger
	metrics     metrics.OperationMetrics
	tracer      trace.Tracer
	db          *bun.DB
	clock       clock.Clock
	rng         *rand.Rand
	startRating int
}

// Option customises a MatchService.
type Option func(*MatchService)

func WithClock(c clock.Clock) Option {
	return func(s *MatchService) { s.clock = c }
}

// WithRand sets the random source used for track draws and random team splits.
func WithRand(rng *rand.Rand) Option {
	return func(s *MatchService) { s.rng = rng }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *MatchService) { s.publisher = p }
}

func WithStartingRating(rating int) Option {
	return func(s *MatchService) { s.startRating = rating }
}

// NewMatchService creates a new MatchService.
func NewMatchService(
	repo matchdb.Repository,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	s := &MatchService{
		repo:        repo,
		publisher:   nopPublisher{},
		logger:      logger,
		metrics:     m,
		tracer:      tracer,
		db:          db,
		clock:       clock.RealClock{},
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		startRating: DefaultStartingRating,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *MatchService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("id", identifier),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		attr.String("operation", operationName),
		attr.String("id", identifier),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.String("id", identifier),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("id", identifier),
			attr.ExtractCorrelationID(ctx),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.String("operation", operationName),
			attr.String("id", identifier),
			attr.ExtractCorrelationID(ctx),
			attr.Any("failure_payload", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.String("operation", operationName),
			attr.String("id", identifier),
			attr.ExtractCorrelationID(ctx),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
// A failure result commits whatever was written; callers return failures
// before their first write.
func runInTx[S any, F any](
	s *MatchService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
