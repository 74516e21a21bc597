package tournamentqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// QueueService schedules and manages tournament close jobs.
type QueueService interface {
	// ScheduleCompletion queues the tournament to close at the given time,
	// replacing any close already queued for it.
	ScheduleCompletion(ctx context.Context, tournamentID uuid.UUID, at time.Time) error
	CancelTournamentJobs(ctx context.Context, tournamentID uuid.UUID) error
	GetScheduledJobs(ctx context.Context, tournamentID uuid.UUID) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// riverJobRow is the slice of river_job the service inspects.
type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

// Service handles tournament scheduling using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics metrics.OperationMetrics
}

// NewService creates a River client on its own pgx pool and registers the
// close worker.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, maxWorkers int, m metrics.OperationMetrics, completer Completer) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_tournament_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing tournament queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if maxWorkers <= 0 {
		maxWorkers = 5
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewCompleteTournamentWorker(ctxLogger, completer))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
			queueName:          {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", "river")
	m.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Tournament queue service initialized")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: m,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting tournament queue service")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	return nil
}

// Stop drains running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping tournament queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	return nil
}

func (s *Service) ScheduleCompletion(ctx context.Context, tournamentID uuid.UUID, at time.Time) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_tournament_complete", "river")

	ctxLogger := s.logger.With(
		attr.UUID("tournament_id", tournamentID),
		attr.Time("close_time", at),
		attr.String("operation", "schedule_tournament_complete"),
	)

	now := time.Now()
	if at.Before(now.Add(5 * time.Second)) {
		s.metrics.RecordOperationFailure(ctx, "schedule_tournament_complete", "river")
		return fmt.Errorf("close time must be at least 5 seconds in the future")
	}

	// Unique-by-args would keep the old job, so clear it first.
	if err := s.CancelTournamentJobs(ctx, tournamentID); err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_tournament_complete", "river")
		return err
	}

	res, err := s.client.Insert(ctx, CompleteTournamentJob{TournamentID: tournamentID}, &river.InsertOpts{
		Queue:       queueName,
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to schedule tournament close", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_tournament_complete", "river")
		return fmt.Errorf("failed to schedule tournament close: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_tournament_complete", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_tournament_complete", "river", time.Since(start))

	ctxLogger.Info("Tournament close scheduled",
		attr.Duration("delay", at.Sub(now)),
		attr.Int64("job_id", res.Job.ID),
	)
	return nil
}

func (s *Service) CancelTournamentJobs(ctx context.Context, tournamentID uuid.UUID) error {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state").
		Where("kind = ?", completeJobKind).
		Where("state IN (?)", bun.In([]string{"available", "scheduled", "retryable"})).
		Where("args->>'tournament_id' = ?", tournamentID.String()).
		Scan(ctx, &jobs)
	if err != nil {
		return fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			s.logger.Warn("Failed to cancel job",
				attr.Int64("job_id", job.ID),
				attr.Error(err),
			)
			continue
		}
		cancelled++
	}

	if len(jobs) > 0 {
		s.logger.Info("Cancelled tournament close jobs",
			attr.UUID("tournament_id", tournamentID),
			attr.Int("total_found", len(jobs)),
			attr.Int("cancelled_count", cancelled),
		)
	}
	return nil
}

func (s *Service) GetScheduledJobs(ctx context.Context, tournamentID uuid.UUID) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", completeJobKind).
		Where("args->>'tournament_id' = ?", tournamentID.String()).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:           job.ID,
			Kind:         job.Kind,
			TournamentID: tournamentID.String(),
			State:        job.State,
			ScheduledAt:  scheduledAt,
			CreatedAt:    job.CreatedAt.Format(time.RFC3339),
			Attempt:      int(job.Attempt),
			MaxAttempts:  int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the job table is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := s.db.NewSelect().Table("river_job").Limit(1).Count(ctx); err != nil {
		return fmt.Errorf("river health check failed: %w", err)
	}
	return nil
}
