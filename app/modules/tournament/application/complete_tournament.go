package tournamentservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	tournamentdomain "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CompleteTournament declares the winner and stores the closing stats. Both
// are written in one transaction with the tournament row locked, so a
// tournament is closed at most once.
func (s *TournamentService) CompleteTournament(ctx context.Context, tournamentID uuid.UUID) (CompletionResult, error) {
	result, err := withTelemetry(s, ctx, "CompleteTournament", tournamentID.String(), func(ctx context.Context) (CompletionResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (CompletionResult, error) {
			return s.completeTournamentLogic(ctx, db, tournamentID)
		})
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	c := result.Success
	s.publishCompleted(ctx, events.TournamentCompletedPayload{
		TournamentID: c.Tournament.ID,
		GroupID:      c.Tournament.GroupID,
		WinnerID:     c.Winner.PlayerID,
		CompletedAt:  c.Tournament.UpdatedAt,
	})
	return result, nil
}

func (s *TournamentService) completeTournamentLogic(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (CompletionResult, error) {
	t, err := s.repo.GetTournamentForUpdate(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return failure[Completion](ErrTournamentNotFound), nil
		}
		return CompletionResult{}, err
	}
	if t.Closed() {
		return failure[Completion](ErrTournamentClosed), nil
	}

	standings, err := s.repo.GetStandings(ctx, db, tournamentID)
	if err != nil {
		return CompletionResult{}, err
	}
	winner, ok := pickWinner(standings)
	if !ok {
		return failure[Completion](ErrNoTournamentData), nil
	}

	history, err := s.loadHistory(ctx, db, tournamentID)
	if err != nil {
		return CompletionResult{}, err
	}
	stats := tournamentdomain.ComputeStats(history)

	if err := s.repo.SetWinner(ctx, db, tournamentID, winner.PlayerID); err != nil {
		if errors.Is(err, tournamentdb.ErrNoRowsAffected) {
			return failure[Completion](ErrTournamentClosed), nil
		}
		return CompletionResult{}, err
	}

	now := s.clock.NowUTC()
	rows := make([]tournamentdb.TournamentStat, len(stats))
	for i, st := range stats {
		rows[i] = tournamentdb.TournamentStat{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			StatType:     string(st.Type),
			PlayerID:     st.PlayerID,
			Value:        st.Value,
			ExtraData:    st.Extra,
			CreatedAt:    now,
		}
	}
	if err := s.repo.InsertStats(ctx, db, rows); err != nil {
		return CompletionResult{}, err
	}

	t.WinnerID = &winner.PlayerID
	t.UpdatedAt = now
	return success(Completion{Tournament: *t, Winner: winner, Stats: stats}), nil
}

func pickWinner(standings []tournamentdb.Standing) (tournamentdb.Standing, bool) {
	ladder := make([]tournamentdomain.Standing, len(standings))
	byPlayer := make(map[uuid.UUID]tournamentdb.Standing, len(standings))
	for i, st := range standings {
		ladder[i] = tournamentdomain.Standing{PlayerID: st.PlayerID, Rating: st.Rating, CreatedAt: st.CreatedAt}
		byPlayer[st.PlayerID] = st
	}
	w, ok := tournamentdomain.PickWinner(ladder)
	if !ok {
		return tournamentdb.Standing{}, false
	}
	return byPlayer[w.PlayerID], true
}

func (s *TournamentService) loadHistory(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (tournamentdomain.History, error) {
	var h tournamentdomain.History

	races, err := s.repo.GetRaceHistory(ctx, db, tournamentID)
	if err != nil {
		return h, err
	}
	contributions, err := s.repo.GetContributionHistory(ctx, db, tournamentID)
	if err != nil {
		return h, err
	}
	matches, err := s.repo.GetMatchScoreHistory(ctx, db, tournamentID)
	if err != nil {
		return h, err
	}

	for _, r := range races {
		h.Races = append(h.Races, tournamentdomain.RaceRecord{
			PlayerID:            r.PlayerID,
			TournamentEloChange: r.TournamentEloChange,
			TournamentEloAfter:  r.TournamentEloAfter,
		})
	}
	for _, c := range contributions {
		h.Contributions = append(h.Contributions, tournamentdomain.ContributionRecord{
			SourcePlayerID:      c.SourcePlayerID,
			BeneficiaryPlayerID: c.BeneficiaryPlayerID,
			Amount:              c.Amount,
		})
	}
	for _, m := range matches {
		h.Matches = append(h.Matches, tournamentdomain.MatchRecord{
			PlayerID:            m.PlayerID,
			TournamentEloChange: m.TournamentEloChange,
		})
	}
	return h, nil
}
