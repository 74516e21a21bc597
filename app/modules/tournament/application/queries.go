package tournamentservice

import (
	"context"
	"errors"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
)

func (s *TournamentService) GetTournament(ctx context.Context, tournamentID uuid.UUID) (TournamentResult, error) {
	return withTelemetry(s, ctx, "GetTournament", tournamentID.String(), func(ctx context.Context) (TournamentResult, error) {
		t, err := s.repo.GetTournament(ctx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[tournamentdb.Tournament](ErrTournamentNotFound), nil
			}
			return TournamentResult{}, err
		}
		return success(*t), nil
	})
}

// GetLeaderboard lists the tournament ladder, best rating first.
func (s *TournamentService) GetLeaderboard(ctx context.Context, tournamentID uuid.UUID) (LeaderboardResult, error) {
	return withTelemetry(s, ctx, "GetLeaderboard", tournamentID.String(), func(ctx context.Context) (LeaderboardResult, error) {
		if _, err := s.repo.GetTournament(ctx, nil, tournamentID); err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[[]tournamentdb.Standing](ErrTournamentNotFound), nil
			}
			return LeaderboardResult{}, err
		}
		standings, err := s.repo.GetStandings(ctx, nil, tournamentID)
		if err != nil {
			return LeaderboardResult{}, err
		}
		return success(standings), nil
	})
}

// GetStats returns the stats stored when the tournament closed. An open
// tournament has none.
func (s *TournamentService) GetStats(ctx context.Context, tournamentID uuid.UUID) (StatsResult, error) {
	return withTelemetry(s, ctx, "GetStats", tournamentID.String(), func(ctx context.Context) (StatsResult, error) {
		if _, err := s.repo.GetTournament(ctx, nil, tournamentID); err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[[]tournamentdb.TournamentStat](ErrTournamentNotFound), nil
			}
			return StatsResult{}, err
		}
		stats, err := s.repo.GetStats(ctx, nil, tournamentID)
		if err != nil {
			return StatsResult{}, err
		}
		return success(stats), nil
	})
}
