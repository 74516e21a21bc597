package tournamentservice

import (
	"context"
	"errors"
	"strings"
	"time"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ScheduleCompletion queues the tournament to close at a time written in
// plain English, e.g. "next friday at 9pm". It returns the UTC close time.
func (s *TournamentService) ScheduleCompletion(ctx context.Context, tournamentID uuid.UUID, input string) (ScheduleResult, error) {
	return withTelemetry(s, ctx, "ScheduleCompletion", tournamentID.String(), func(ctx context.Context) (ScheduleResult, error) {
		if s.scheduler == nil {
			return ScheduleResult{}, ErrNoScheduler
		}

		t, err := s.repo.GetTournament(ctx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[time.Time](ErrTournamentNotFound), nil
			}
			return ScheduleResult{}, err
		}
		if t.Closed() {
			return failure[time.Time](ErrTournamentClosed), nil
		}

		at, err := s.parseCloseTime(input)
		if err != nil {
			return failure[time.Time](err), nil
		}

		if err := s.scheduler.ScheduleCompletion(ctx, tournamentID, at); err != nil {
			return ScheduleResult{}, err
		}
		return success(at), nil
	})
}

func (s *TournamentService) parseCloseTime(input string) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, ErrUnrecognizedTime
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	now := s.clock.Now().In(s.location)
	r, err := w.Parse(input, now)
	if err != nil || r == nil {
		return time.Time{}, ErrUnrecognizedTime
	}

	at := r.Time.In(s.location).Truncate(time.Minute)
	if !at.After(now) {
		return time.Time{}, ErrScheduleInPast
	}
	return at.UTC(), nil
}
