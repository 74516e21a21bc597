package matchservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordRoundResults scores one round: both rating ladders move, teammates
// receive their share, match aggregates are updated and, when this was the
// last open round, team scores are settled and the match is completed.
func (s *MatchService) RecordRoundResults(ctx context.Context, matchID uuid.UUID, roundNumber int, submitted []PlayerResult) (RoundResult, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (RoundResult, error) {
		return s.recordRoundLogic(ctx, db, matchID, roundNumber, submitted)
	}

	result, err := withTelemetry(s, ctx, "RecordRoundResults", matchID.String(), func(ctx context.Context) (RoundResult, error) {
		if err := validateResults(submitted); err != nil {
			return failure[RoundOutcome](err), nil
		}
		return runInTx(s, ctx, recordTx)
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	outcome := result.Success
	s.publishMatchUpdated(ctx, events.MatchUpdatedPayload{
		MatchID:      outcome.MatchID,
		TournamentID: outcome.TournamentID,
		GroupID:      outcome.GroupID,
		RoundNumber:  outcome.RoundNumber,
		Completed:    outcome.MatchCompleted,
	})
	return result, nil
}

func validateResults(submitted []PlayerResult) error {
	if len(submitted) == 0 {
		return ErrNoResults
	}
	players := make(map[uuid.UUID]struct{}, len(submitted))
	positions := make(map[int]struct{}, len(submitted))
	for _, r := range submitted {
		if r.Position < 1 || r.Position > matchdomain.FieldSize {
			return fmt.Errorf("%w: got %d", ErrInvalidPosition, r.Position)
		}
		if _, dup := positions[r.Position]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicatePosition, r.Position)
		}
		if _, dup := players[r.PlayerID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, r.PlayerID)
		}
		positions[r.Position] = struct{}{}
		players[r.PlayerID] = struct{}{}
	}
	return nil
}

func (s *MatchService) recordRoundLogic(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int, submitted []PlayerResult) (RoundResult, error) {
	match, err := s.repo.GetMatchForUpdate(ctx, db, matchID)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[RoundOutcome](ErrMatchNotFound), nil
		}
		return RoundResult{}, fmt.Errorf("failed to lock match: %w", err)
	}
	if match.Completed {
		return failure[RoundOutcome](ErrMatchCompleted), nil
	}

	round, err := s.repo.GetRoundForUpdate(ctx, db, matchID, roundNumber)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[RoundOutcome](fmt.Errorf("%w: %d", ErrRoundNotFound, roundNumber)), nil
		}
		return RoundResult{}, fmt.Errorf("failed to lock round: %w", err)
	}
	if round.Completed {
		return failure[RoundOutcome](ErrRoundAlreadyScored), nil
	}

	lineup, err := s.repo.GetRoundPlayers(ctx, db, matchID, roundNumber)
	if err != nil {
		return RoundResult{}, fmt.Errorf("failed to load round players: %w", err)
	}
	if !sameParticipants(lineup, submitted) {
		return failure[RoundOutcome](ErrParticipantMismatch), nil
	}

	racerIDs := make([]uuid.UUID, len(submitted))
	for i, r := range submitted {
		racerIDs[i] = r.PlayerID
	}
	// Ratings are written back as absolute values, so the rows stay locked
	// from this read until commit.
	players, err := s.lockPlayers(ctx, db, racerIDs)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			return failure[RoundOutcome](err), nil
		}
		return RoundResult{}, err
	}

	roster, err := s.repo.GetTeamRoster(ctx, db, matchID)
	if err != nil {
		return RoundResult{}, fmt.Errorf("failed to load team roster: %w", err)
	}
	teams := make(map[int][]uuid.UUID)
	for _, m := range roster {
		teams[m.TeamNum] = append(teams[m.TeamNum], m.PlayerID)
	}

	// Claim the round before the first write.
	if err := s.repo.MarkRoundCompleted(ctx, db, matchID, roundNumber); err != nil {
		if errors.Is(err, matchdb.ErrNoRowsAffected) {
			return failure[RoundOutcome](ErrRoundAlreadyScored), nil
		}
		return RoundResult{}, fmt.Errorf("failed to mark round completed: %w", err)
	}

	tournamentRatings, err := s.repo.GetOrCreateTournamentScores(ctx, db, match.TournamentID, match.GroupID,
		unionIDs(racerIDs, roster), s.startRating)
	if err != nil {
		return RoundResult{}, fmt.Errorf("failed to load tournament ratings: %w", err)
	}

	allTimeEntries := make([]matchdomain.RaceEntry, len(submitted))
	tournamentEntries := make([]matchdomain.RaceEntry, len(submitted))
	for i, r := range submitted {
		allTimeEntries[i] = matchdomain.RaceEntry{PlayerID: r.PlayerID, Position: r.Position, CurrentRating: players[r.PlayerID].EloRating}
		tournamentEntries[i] = matchdomain.RaceEntry{PlayerID: r.PlayerID, Position: r.Position, CurrentRating: s.tournamentRating(tournamentRatings, r.PlayerID)}
	}
	allTime := matchdomain.CalculateRatingChanges(allTimeEntries)
	tournament := matchdomain.CalculateRatingChanges(tournamentEntries)
	shared := matchdomain.CalculateTeammateContributions(tournament, matchdomain.RosterByPlayer(teams))

	outcome := RoundOutcome{
		MatchID:       matchID,
		TournamentID:  match.TournamentID,
		GroupID:       match.GroupID,
		RoundNumber:   roundNumber,
		Contributions: shared.Contributions,
	}

	raceScores := make([]matchdb.PlayerRaceScore, len(submitted))
	allTimeUpdates := make([]matchdb.RatingUpdate, len(submitted))
	var tournamentUpdates []matchdb.RatingUpdate
	raced := make(map[uuid.UUID]bool, len(submitted))
	for i := range submitted {
		at, tc := allTime[i], tournament[i]
		raced[at.PlayerID] = true
		raceScores[i] = matchdb.PlayerRaceScore{
			MatchID:             matchID,
			RoundNumber:         roundNumber,
			PlayerID:            at.PlayerID,
			GroupID:             match.GroupID,
			Position:            at.Position,
			AllTimeEloChange:    at.Change,
			AllTimeEloAfter:     at.NewRating,
			TournamentEloChange: tc.Change,
			TournamentEloAfter:  tc.NewRating,
		}
		allTimeUpdates[i] = matchdb.RatingUpdate{PlayerID: at.PlayerID, Rating: at.NewRating}
		final := tc.NewRating + shared.Adjustments[tc.PlayerID]
		tournamentUpdates = append(tournamentUpdates, matchdb.RatingUpdate{PlayerID: tc.PlayerID, Rating: final})
		outcome.Changes = append(outcome.Changes, PlayerRoundChange{
			PlayerID:         at.PlayerID,
			Position:         at.Position,
			AllTimeChange:    at.Change,
			AllTimeRating:    at.NewRating,
			TournamentChange: tc.Change,
			TournamentRating: final,
		})
	}
	for _, id := range shared.Beneficiaries {
		if raced[id] {
			continue
		}
		tournamentUpdates = append(tournamentUpdates, matchdb.RatingUpdate{
			PlayerID: id,
			Rating:   s.tournamentRating(tournamentRatings, id) + shared.Adjustments[id],
		})
	}

	contributionRows := make([]matchdb.TeammateEloContribution, len(shared.Contributions))
	for i, c := range shared.Contributions {
		contributionRows[i] = matchdb.TeammateEloContribution{
			MatchID:             matchID,
			RoundNumber:         roundNumber,
			SourcePlayerID:      c.SourcePlayerID,
			BeneficiaryPlayerID: c.BeneficiaryPlayerID,
			GroupID:             match.GroupID,
			ContributionAmount:  c.Amount,
		}
	}

	if err := s.repo.InsertRaceScores(ctx, db, raceScores); err != nil {
		return RoundResult{}, fmt.Errorf("failed to insert race scores: %w", err)
	}
	if err := s.repo.UpdatePlayerRatings(ctx, db, allTimeUpdates); err != nil {
		return RoundResult{}, fmt.Errorf("failed to update player ratings: %w", err)
	}
	if err := s.repo.UpdateTournamentScores(ctx, db, match.TournamentID, tournamentUpdates); err != nil {
		return RoundResult{}, fmt.Errorf("failed to update tournament ratings: %w", err)
	}
	if err := s.repo.InsertContributions(ctx, db, contributionRows); err != nil {
		return RoundResult{}, fmt.Errorf("failed to insert contributions: %w", err)
	}

	matchRaces, err := s.repo.GetRaceScoresForMatch(ctx, db, matchID)
	if err != nil {
		return RoundResult{}, fmt.Errorf("failed to load match race scores: %w", err)
	}
	if err := s.updateMatchScores(ctx, db, match, allTime, tournament, shared, matchRaces); err != nil {
		return RoundResult{}, err
	}

	remaining, err := s.repo.CountIncompleteRounds(ctx, db, matchID)
	if err != nil {
		return RoundResult{}, fmt.Errorf("failed to count open rounds: %w", err)
	}
	if remaining == 0 {
		scores, err := s.completeMatch(ctx, db, match, matchRaces)
		if err != nil {
			return RoundResult{}, err
		}
		outcome.MatchCompleted = true
		outcome.TeamScores = scores
	}

	return success(outcome), nil
}

// updateMatchScores folds this round into each touched player's match aggregate.
func (s *MatchService) updateMatchScores(
	ctx context.Context,
	db bun.IDB,
	match *matchdb.Match,
	allTime, tournament []matchdomain.RatingChange,
	shared matchdomain.ContributionResult,
	matchRaces []matchdb.PlayerRaceScore,
) error {
	existing, err := s.repo.GetMatchScores(ctx, db, match.ID)
	if err != nil {
		return fmt.Errorf("failed to load match scores: %w", err)
	}
	byPlayer := make(map[uuid.UUID]matchdb.PlayerMatchScore, len(existing))
	for _, row := range existing {
		byPlayer[row.PlayerID] = row
	}

	positions := make(map[uuid.UUID][]int)
	for _, r := range matchRaces {
		positions[r.PlayerID] = append(positions[r.PlayerID], r.Position)
	}

	var order []uuid.UUID
	touch := func(id uuid.UUID) matchdb.PlayerMatchScore {
		row, ok := byPlayer[id]
		if !ok {
			row = matchdb.PlayerMatchScore{MatchID: match.ID, PlayerID: id, GroupID: match.GroupID}
		}
		if !slices.Contains(order, id) {
			order = append(order, id)
		}
		return row
	}

	for i := range allTime {
		row := touch(allTime[i].PlayerID)
		row.EloChange += allTime[i].Change
		row.TournamentEloFromRaces += tournament[i].Change
		row.TournamentEloChange += tournament[i].Change
		byPlayer[row.PlayerID] = row
	}
	for _, id := range shared.Beneficiaries {
		row := touch(id)
		row.TournamentEloFromContributions += shared.Adjustments[id]
		row.TournamentEloChange += shared.Adjustments[id]
		byPlayer[id] = row
	}

	updates := make([]matchdb.PlayerMatchScore, len(order))
	for i, id := range order {
		row := byPlayer[id]
		if ps := positions[id]; len(ps) > 0 {
			row.Position = averagePosition(ps)
		}
		updates[i] = row
	}

	if err := s.repo.UpsertMatchScores(ctx, db, updates); err != nil {
		return fmt.Errorf("failed to store match scores: %w", err)
	}
	return nil
}

// completeMatch stores every team's average points per round and closes the match.
func (s *MatchService) completeMatch(ctx context.Context, db bun.IDB, match *matchdb.Match, matchRaces []matchdb.PlayerRaceScore) (map[int]float64, error) {
	teams, err := s.repo.GetTeams(ctx, db, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	lineups, err := s.repo.GetMatchRoundPlayers(ctx, db, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lineups: %w", err)
	}

	type raceKey struct {
		round  int
		player uuid.UUID
	}
	finished := make(map[raceKey]int, len(matchRaces))
	for _, r := range matchRaces {
		finished[raceKey{r.RoundNumber, r.PlayerID}] = r.Position
	}
	teamPositions := make(map[uuid.UUID][]int)
	for _, rp := range lineups {
		if pos, ok := finished[raceKey{rp.RoundNumber, rp.PlayerID}]; ok {
			teamPositions[rp.TeamID] = append(teamPositions[rp.TeamID], pos)
		}
	}

	rows := make([]matchdb.TeamMatchScore, len(teams))
	byNum := make(map[int]float64, len(teams))
	for i, t := range teams {
		score := matchdomain.TeamScore(teamPositions[t.ID], match.Rounds)
		rows[i] = matchdb.TeamMatchScore{MatchID: match.ID, TeamID: t.ID, GroupID: match.GroupID, Score: score}
		byNum[t.TeamNum] = score
	}

	if err := s.repo.SaveTeamScores(ctx, db, rows); err != nil {
		return nil, fmt.Errorf("failed to save team scores: %w", err)
	}
	if err := s.repo.MarkMatchCompleted(ctx, db, match.ID); err != nil {
		if errors.Is(err, matchdb.ErrNoRowsAffected) {
			return nil, ErrMatchCompleted
		}
		return nil, fmt.Errorf("failed to mark match completed: %w", err)
	}
	return byNum, nil
}

func (s *MatchService) tournamentRating(ratings map[uuid.UUID]int, id uuid.UUID) int {
	if r, ok := ratings[id]; ok {
		return r
	}
	return s.startRating
}

func sameParticipants(lineup []matchdb.RoundPlayer, submitted []PlayerResult) bool {
	if len(lineup) != len(submitted) {
		return false
	}
	expected := make(map[uuid.UUID]struct{}, len(lineup))
	for _, rp := range lineup {
		expected[rp.PlayerID] = struct{}{}
	}
	for _, r := range submitted {
		if _, ok := expected[r.PlayerID]; !ok {
			return false
		}
	}
	return true
}

// unionIDs returns racers followed by roster members not already listed.
func unionIDs(racers []uuid.UUID, roster []matchdb.TeamMember) []uuid.UUID {
	out := append([]uuid.UUID(nil), racers...)
	for _, m := range roster {
		if !slices.Contains(out, m.PlayerID) {
			out = append(out, m.PlayerID)
		}
	}
	return out
}

func averagePosition(positions []int) int {
	total := 0
	for _, p := range positions {
		total += p
	}
	return int(math.Round(float64(total) / float64(len(positions))))
}
