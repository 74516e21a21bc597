package tournamentservice

import (
	"time"

	tournamentdomain "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/results"
	"github.com/google/uuid"
)

type CreateTournamentRequest struct {
	GroupID   uuid.UUID  `json:"group_id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Completion is what closing a tournament produced.
type Completion struct {
	Tournament tournamentdb.Tournament `json:"tournament"`
	Winner     tournamentdb.Standing   `json:"winner"`
	Stats      []tournamentdomain.Stat `json:"stats"`
}

type (
	TournamentResult  = results.OperationResult[tournamentdb.Tournament, error]
	CompletionResult  = results.OperationResult[Completion, error]
	LeaderboardResult = results.OperationResult[[]tournamentdb.Standing, error]
	StatsResult       = results.OperationResult[[]tournamentdb.TournamentStat, error]
	FileResult        = results.OperationResult[[]byte, error]
	ScheduleResult    = results.OperationResult[time.Time, error]
)

func failure[S any](err error) results.OperationResult[S, error] {
	return results.FailureResult[S, error](err)
}

func success[S any](s S) results.OperationResult[S, error] {
	return results.SuccessResult[S, error](s)
}
