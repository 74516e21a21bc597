package matchservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateMatch allocates teams, lineups and tracks for a new match and
// stores it in one transaction.
func (s *MatchService) CreateMatch(ctx context.Context, req CreateMatchRequest) (MatchResult, error) {
	createTx := func(ctx context.Context, db bun.IDB) (MatchResult, error) {
		return s.createMatchLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "CreateMatch", req.TournamentID.String(), func(ctx context.Context) (MatchResult, error) {
		if err := validateCreateMatch(req); err != nil {
			return failure[MatchDetails](err), nil
		}
		return runInTx(s, ctx, createTx)
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	m := result.Success.Match
	s.publishMatchUpdated(ctx, events.MatchUpdatedPayload{
		MatchID:      m.ID,
		TournamentID: m.TournamentID,
		GroupID:      m.GroupID,
	})
	return result, nil
}

func validateCreateMatch(req CreateMatchRequest) error {
	if err := validatePlayerSet(req.PlayerIDs); err != nil {
		return err
	}
	if req.Rounds <= 0 {
		return ErrInvalidRoundCount
	}
	if req.TeamsPerRace <= 0 {
		return ErrInvalidTeamCount
	}
	if req.TeamsPerRace > len(req.PlayerIDs) {
		return ErrTooManyTeams
	}
	if req.Rounds*req.TeamsPerRace < len(req.PlayerIDs) {
		return fmt.Errorf("%w: %d rounds of %d racers for %d players",
			ErrNotEnoughRaceSlots, req.Rounds, req.TeamsPerRace, len(req.PlayerIDs))
	}
	return nil
}

func (s *MatchService) createMatchLogic(ctx context.Context, db bun.IDB, req CreateMatchRequest) (MatchResult, error) {
	tournament, err := s.repo.GetTournamentRef(ctx, db, req.TournamentID)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[MatchDetails](ErrTournamentNotFound), nil
		}
		return MatchResult{}, fmt.Errorf("failed to load tournament: %w", err)
	}
	if tournament.Closed() {
		return failure[MatchDetails](ErrTournamentClosed), nil
	}

	players, err := s.loadPlayers(ctx, db, req.PlayerIDs)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return failure[MatchDetails](err), nil
		}
		return MatchResult{}, err
	}
	for _, id := range req.PlayerIDs {
		if players[id].GroupID != tournament.GroupID {
			return failure[MatchDetails](fmt.Errorf("%w: %s", ErrPlayerNotInGroup, id)), nil
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = matchdomain.AllocationBalanced
	}
	teams := matchdomain.AllocateTeams(ratingsOf(req.PlayerIDs, players), req.TeamsPerRace, mode, s.rng)
	lineups := matchdomain.AllocateRaces(teams, req.Rounds)

	trackIDs, err := s.selectTracks(ctx, db, req.TournamentID, req.Rounds, true)
	if err != nil {
		return MatchResult{}, err
	}

	match := &matchdb.Match{
		ID:           uuid.New(),
		GroupID:      tournament.GroupID,
		TournamentID: tournament.ID,
		Time:         s.clock.NowUTC(),
		Rounds:       req.Rounds,
	}
	if err := s.repo.CreateMatch(ctx, db, match); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create match: %w", err)
	}

	teamRows := make([]matchdb.Team, len(teams))
	teamIDs := make(map[int]uuid.UUID, len(teams))
	var members []matchdb.TeamPlayer
	var matchScores []matchdb.PlayerMatchScore
	details := MatchDetails{Match: *match}
	for i, t := range teams {
		id := uuid.New()
		teamIDs[t.TeamNum] = id
		teamRows[i] = matchdb.Team{ID: id, GroupID: match.GroupID, MatchID: match.ID, TeamNum: t.TeamNum}
		td := TeamDetails{ID: id, TeamNum: t.TeamNum}
		for rank, p := range t.Players {
			members = append(members, matchdb.TeamPlayer{
				GroupID:  match.GroupID,
				TeamID:   id,
				PlayerID: p.PlayerID,
				Rank:     rank + 1,
			})
			matchScores = append(matchScores, matchdb.PlayerMatchScore{
				MatchID:  match.ID,
				PlayerID: p.PlayerID,
				GroupID:  match.GroupID,
			})
			td.PlayerIDs = append(td.PlayerIDs, p.PlayerID)
		}
		details.Teams = append(details.Teams, td)
	}

	if err := s.repo.CreateTeams(ctx, db, teamRows); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create teams: %w", err)
	}
	if err := s.repo.CreateTeamPlayers(ctx, db, members); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create team players: %w", err)
	}
	if err := s.repo.CreateMatchScores(ctx, db, matchScores); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create match scores: %w", err)
	}

	rounds := make([]matchdb.Round, len(lineups))
	var racers []matchdb.RoundPlayer
	for i, l := range lineups {
		rounds[i] = matchdb.Round{MatchID: match.ID, RoundNumber: l.RoundNumber}
		// A catalog smaller than the round count leaves the later rounds without a track.
		if i < len(trackIDs) {
			trackID := trackIDs[i]
			rounds[i].TrackID = &trackID
		}
		for _, slot := range l.Slots {
			racers = append(racers, matchdb.RoundPlayer{
				MatchID:        match.ID,
				RoundNumber:    l.RoundNumber,
				PlayerID:       slot.PlayerID,
				TeamID:         teamIDs[slot.TeamNum],
				PlayerPosition: slot.TeamNum,
			})
		}
		details.Rounds = append(details.Rounds, RoundDetails{
			RoundNumber: l.RoundNumber,
			TrackID:     rounds[i].TrackID,
			Lineup:      l.Slots,
		})
	}

	if err := s.repo.CreateRounds(ctx, db, rounds); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create rounds: %w", err)
	}
	if err := s.repo.CreateRoundPlayers(ctx, db, racers); err != nil {
		return MatchResult{}, fmt.Errorf("failed to create round players: %w", err)
	}

	return success(details), nil
}
