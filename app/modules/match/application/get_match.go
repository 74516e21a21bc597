package matchservice

import (
	"context"
	"errors"
	"fmt"

	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetMatch returns a match with its teams and round lineups.
func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (MatchResult, error) {
	return withTelemetry(s, ctx, "GetMatch", matchID.String(), func(ctx context.Context) (MatchResult, error) {
		return s.getMatchLogic(ctx, nil, matchID)
	})
}

func (s *MatchService) getMatchLogic(ctx context.Context, db bun.IDB, matchID uuid.UUID) (MatchResult, error) {
	match, err := s.repo.GetMatch(ctx, db, matchID)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[MatchDetails](ErrMatchNotFound), nil
		}
		return MatchResult{}, fmt.Errorf("failed to load match: %w", err)
	}

	teams, err := s.repo.GetTeams(ctx, db, matchID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to load teams: %w", err)
	}
	roster, err := s.repo.GetTeamRoster(ctx, db, matchID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to load team roster: %w", err)
	}
	rounds, err := s.repo.GetRounds(ctx, db, matchID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to load rounds: %w", err)
	}
	lineups, err := s.repo.GetMatchRoundPlayers(ctx, db, matchID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to load lineups: %w", err)
	}

	details := MatchDetails{Match: *match}
	for _, t := range teams {
		td := TeamDetails{ID: t.ID, TeamNum: t.TeamNum, Score: t.Score}
		for _, m := range roster {
			if m.TeamID == t.ID {
				td.PlayerIDs = append(td.PlayerIDs, m.PlayerID)
			}
		}
		details.Teams = append(details.Teams, td)
	}
	for _, r := range rounds {
		rd := RoundDetails{RoundNumber: r.RoundNumber, TrackID: r.TrackID, Completed: r.Completed}
		for _, rp := range lineups {
			if rp.RoundNumber == r.RoundNumber {
				rd.Lineup = append(rd.Lineup, matchdomain.LineupSlot{PlayerID: rp.PlayerID, TeamNum: rp.PlayerPosition})
			}
		}
		details.Rounds = append(details.Rounds, rd)
	}
	return success(details), nil
}
