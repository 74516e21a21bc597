package tournamentqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tournamentservice "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/application"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Completer closes tournaments.
type Completer interface {
	CompleteTournament(ctx context.Context, tournamentID uuid.UUID) (tournamentservice.CompletionResult, error)
}

// CompleteTournamentWorker runs scheduled closes. A tournament someone already
// closed by hand counts as done; one that cannot be closed is cancelled
// rather than retried.
type CompleteTournamentWorker struct {
	river.WorkerDefaults[CompleteTournamentJob]
	completer Completer
	logger    *slog.Logger
}

func NewCompleteTournamentWorker(logger *slog.Logger, completer Completer) *CompleteTournamentWorker {
	return &CompleteTournamentWorker{completer: completer, logger: logger}
}

func (w *CompleteTournamentWorker) Work(ctx context.Context, job *river.Job[CompleteTournamentJob]) error {
	logger := w.logger.With(
		attr.UUID("tournament_id", job.Args.TournamentID),
		attr.Int64("job_id", job.ID),
	)

	result, err := w.completer.CompleteTournament(ctx, job.Args.TournamentID)
	if err != nil {
		logger.ErrorContext(ctx, "Scheduled tournament close failed", attr.Error(err))
		return err
	}

	if result.IsFailure() {
		failure := *result.Failure
		if errors.Is(failure, tournamentservice.ErrTournamentClosed) {
			logger.InfoContext(ctx, "Tournament already closed, nothing to do")
			return nil
		}
		logger.WarnContext(ctx, "Scheduled tournament close rejected", attr.Error(failure))
		return river.JobCancel(fmt.Errorf("complete tournament: %w", failure))
	}

	logger.InfoContext(ctx, "Tournament closed on schedule",
		attr.UUID("winner_id", result.Success.Winner.PlayerID),
	)
	return nil
}
