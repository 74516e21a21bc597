package tournamentservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/clock"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/Black-And-White-Club/kart-bot/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tournament"

// CompletionScheduler queues a tournament to be closed at a later time.
type CompletionScheduler interface {
	ScheduleCompletion(ctx context.Context, tournamentID uuid.UUID, at time.Time) error
}

// TournamentService creates tournaments, closes them and serves their
// standings.
type TournamentService struct {
	repo      tournamentdb.Repository
	publisher EventPublisher
	scheduler CompletionScheduler
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	clock     clock.Clock
	location  *time.Location
}

type Option func(*TournamentService)

func WithClock(c clock.Clock) Option {
	return func(s *TournamentService) { s.clock = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *TournamentService) { s.publisher = p }
}

func WithScheduler(sch CompletionScheduler) Option {
	return func(s *TournamentService) { s.scheduler = sch }
}

// WithLocation sets the zone natural-language close times are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *TournamentService) { s.location = loc }
}

func NewTournamentService(
	repo tournamentdb.Repository,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	s := &TournamentService{
		repo:      repo,
		publisher: nopPublisher{},
		logger:    logger,
		metrics:   m,
		tracer:    tracer,
		db:        db,
		clock:     clock.RealClock{},
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetScheduler wires the completion queue after construction. The queue's
// worker needs the service, so one of the two has to be attached late.
func (s *TournamentService) SetScheduler(sch CompletionScheduler) {
	s.scheduler = sch
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *TournamentService,
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

// runInTx runs fn in a transaction, or directly against the repository when
// no database is configured.
func runInTx[S any, F any](
	s *TournamentService,
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
