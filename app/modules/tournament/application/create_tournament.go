package tournamentservice

import (
	"context"
	"strings"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateTournament opens a tournament for a group. When an end date is given
// and a scheduler is wired, the tournament is queued to close on that date.
func (s *TournamentService) CreateTournament(ctx context.Context, req CreateTournamentRequest) (TournamentResult, error) {
	result, err := withTelemetry(s, ctx, "CreateTournament", req.GroupID.String(), func(ctx context.Context) (TournamentResult, error) {
		if err := validateCreateTournament(req); err != nil {
			return failure[tournamentdb.Tournament](err), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (TournamentResult, error) {
			now := s.clock.NowUTC()
			t := &tournamentdb.Tournament{
				ID:        uuid.New(),
				GroupID:   req.GroupID,
				Name:      strings.TrimSpace(req.Name),
				StartDate: req.StartDate.UTC(),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if req.EndDate != nil {
				end := req.EndDate.UTC()
				t.EndDate = &end
			}
			if err := s.repo.CreateTournament(ctx, db, t); err != nil {
				return TournamentResult{}, err
			}
			return success(*t), nil
		})
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	t := *result.Success
	if t.EndDate != nil && s.scheduler != nil && t.EndDate.After(s.clock.NowUTC()) {
		if err := s.scheduler.ScheduleCompletion(ctx, t.ID, *t.EndDate); err != nil {
			s.logger.WarnContext(ctx, "Failed to schedule tournament close",
				attr.UUID("tournament_id", t.ID),
				attr.Time("end_date", *t.EndDate),
				attr.Error(err),
			)
		}
	}
	return result, nil
}

func validateCreateTournament(req CreateTournamentRequest) error {
	if req.GroupID == uuid.Nil {
		return ErrMissingGroup
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrEmptyName
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return ErrInvalidDates
	}
	return nil
}
