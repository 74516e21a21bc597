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

// AllocateTeams splits the given players into teamCount teams using their
// all-time ratings.
func (s *MatchService) AllocateTeams(ctx context.Context, playerIDs []uuid.UUID, teamCount int, mode matchdomain.AllocationMode) (TeamsResult, error) {
	return withTelemetry(s, ctx, "AllocateTeams", fmt.Sprintf("%d players", len(playerIDs)), func(ctx context.Context) (TeamsResult, error) {
		if err := validatePlayerSet(playerIDs); err != nil {
			return failure[[]matchdomain.Team](err), nil
		}
		if teamCount <= 0 {
			return failure[[]matchdomain.Team](ErrInvalidTeamCount), nil
		}
		if teamCount > len(playerIDs) {
			return failure[[]matchdomain.Team](ErrTooManyTeams), nil
		}

		players, err := s.loadPlayers(ctx, nil, playerIDs)
		if err != nil {
			if errors.Is(err, ErrPlayerNotFound) {
				return failure[[]matchdomain.Team](err), nil
			}
			return TeamsResult{}, err
		}

		return success(matchdomain.AllocateTeams(ratingsOf(playerIDs, players), teamCount, mode, s.rng)), nil
	})
}

// AllocateRaces builds the per-round lineups for already formed teams.
// teams[i] lists the players of team i+1; their all-time ratings decide the
// order in which each team sends them out.
func (s *MatchService) AllocateRaces(ctx context.Context, teams [][]uuid.UUID, rounds int) (LineupResult, error) {
	return withTelemetry(s, ctx, "AllocateRaces", fmt.Sprintf("%d teams", len(teams)), func(ctx context.Context) (LineupResult, error) {
		if rounds <= 0 {
			return failure[[]matchdomain.Lineup](ErrInvalidRoundCount), nil
		}
		if len(teams) == 0 {
			return failure[[]matchdomain.Lineup](ErrInvalidTeamCount), nil
		}
		var ids []uuid.UUID
		for i, members := range teams {
			if len(members) == 0 {
				return failure[[]matchdomain.Lineup](fmt.Errorf("%w: team %d", ErrEmptyTeam, i+1)), nil
			}
			ids = append(ids, members...)
		}
		if err := validatePlayerSet(ids); err != nil {
			return failure[[]matchdomain.Lineup](err), nil
		}

		players, err := s.loadPlayers(ctx, nil, ids)
		if err != nil {
			if errors.Is(err, ErrPlayerNotFound) {
				return failure[[]matchdomain.Lineup](err), nil
			}
			return LineupResult{}, err
		}

		rated := make([]matchdomain.Team, len(teams))
		for i, members := range teams {
			rated[i] = matchdomain.Team{TeamNum: i + 1, Players: ratingsOf(members, players)}
		}
		return success(matchdomain.AllocateRaces(rated, rounds)), nil
	})
}

func validatePlayerSet(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrNoPlayers
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// loadPlayers fetches every id and fails with ErrPlayerNotFound if any is unknown.
func (s *MatchService) loadPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]matchdb.Player, error) {
	players, err := s.repo.GetPlayersByIDs(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	return indexPlayers(ids, players)
}

// lockPlayers is loadPlayers holding the player rows until the transaction ends.
func (s *MatchService) lockPlayers(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]matchdb.Player, error) {
	players, err := s.repo.GetPlayersForUpdate(ctx, db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock players: %w", err)
	}
	return indexPlayers(ids, players)
}

func indexPlayers(ids []uuid.UUID, players []matchdb.Player) (map[uuid.UUID]matchdb.Player, error) {
	byID := make(map[uuid.UUID]matchdb.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
	}
	return byID, nil
}

// ratingsOf keeps the caller's order, which the allocator uses to break ties.
func ratingsOf(ids []uuid.UUID, players map[uuid.UUID]matchdb.Player) []matchdomain.PlayerRating {
	out := make([]matchdomain.PlayerRating, len(ids))
	for i, id := range ids {
		out[i] = matchdomain.PlayerRating{PlayerID: id, Rating: players[id].EloRating}
	}
	return out
}
