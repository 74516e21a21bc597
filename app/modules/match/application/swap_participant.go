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

// SwapRoundParticipant replaces outPlayerID with inPlayerID in an unscored
// round. The incoming player races for the outgoing player's team and joins
// that team's roster if they were not part of the match yet. A player already
// rostered on another team of the match cannot take the slot.
func (s *MatchService) SwapRoundParticipant(ctx context.Context, matchID uuid.UUID, roundNumber int, outPlayerID, inPlayerID uuid.UUID) (RosterResult, error) {
	swapTx := func(ctx context.Context, db bun.IDB) (RosterResult, error) {
		return s.swapParticipantLogic(ctx, db, matchID, roundNumber, outPlayerID, inPlayerID)
	}

	var match matchdb.Match
	result, err := withTelemetry(s, ctx, "SwapRoundParticipant", matchID.String(), func(ctx context.Context) (RosterResult, error) {
		if outPlayerID == inPlayerID {
			return failure[RoundDetails](ErrPlayerAlreadyInRound), nil
		}
		res, err := runInTx(s, ctx, swapTx)
		if err == nil && res.IsSuccess() {
			m, mErr := s.repo.GetMatch(ctx, nil, matchID)
			if mErr == nil {
				match = *m
			}
		}
		return res, err
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	s.publishMatchUpdated(ctx, events.MatchUpdatedPayload{
		MatchID:      matchID,
		TournamentID: match.TournamentID,
		GroupID:      match.GroupID,
		RoundNumber:  roundNumber,
	})
	return result, nil
}

func (s *MatchService) swapParticipantLogic(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int, outPlayerID, inPlayerID uuid.UUID) (RosterResult, error) {
	match, err := s.repo.GetMatchForUpdate(ctx, db, matchID)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[RoundDetails](ErrMatchNotFound), nil
		}
		return RosterResult{}, fmt.Errorf("failed to lock match: %w", err)
	}
	if match.Completed {
		return failure[RoundDetails](ErrMatchCompleted), nil
	}

	round, err := s.repo.GetRoundForUpdate(ctx, db, matchID, roundNumber)
	if err != nil {
		if errors.Is(err, matchdb.ErrNotFound) {
			return failure[RoundDetails](fmt.Errorf("%w: %d", ErrRoundNotFound, roundNumber)), nil
		}
		return RosterResult{}, fmt.Errorf("failed to lock round: %w", err)
	}
	if round.Completed {
		return failure[RoundDetails](ErrRoundAlreadyScored), nil
	}

	lineup, err := s.repo.GetRoundPlayers(ctx, db, matchID, roundNumber)
	if err != nil {
		return RosterResult{}, fmt.Errorf("failed to load round players: %w", err)
	}
	var outgoing *matchdb.RoundPlayer
	for i := range lineup {
		switch lineup[i].PlayerID {
		case outPlayerID:
			outgoing = &lineup[i]
		case inPlayerID:
			return failure[RoundDetails](ErrPlayerAlreadyInRound), nil
		}
	}
	if outgoing == nil {
		return failure[RoundDetails](ErrPlayerNotInRound), nil
	}

	roster, err := s.repo.GetTeamRoster(ctx, db, matchID)
	if err != nil {
		return RosterResult{}, fmt.Errorf("failed to load team roster: %w", err)
	}
	member := false
	nextRank := 1
	for _, m := range roster {
		if m.PlayerID == inPlayerID {
			// Contributions follow the roster, so a racer can only fill a
			// slot of their own team.
			if m.TeamID != outgoing.TeamID {
				return failure[RoundDetails](ErrPlayerOnOtherTeam), nil
			}
			member = true
		}
		if m.TeamID == outgoing.TeamID && m.Rank >= nextRank {
			nextRank = m.Rank + 1
		}
	}

	if !member {
		players, err := s.loadPlayers(ctx, db, []uuid.UUID{inPlayerID})
		if err != nil {
			if errors.Is(err, ErrPlayerNotFound) {
				return failure[RoundDetails](err), nil
			}
			return RosterResult{}, err
		}
		if players[inPlayerID].GroupID != match.GroupID {
			return failure[RoundDetails](fmt.Errorf("%w: %s", ErrPlayerNotInGroup, inPlayerID)), nil
		}

		if err := s.repo.CreateTeamPlayers(ctx, db, []matchdb.TeamPlayer{{
			GroupID:  match.GroupID,
			TeamID:   outgoing.TeamID,
			PlayerID: inPlayerID,
			Rank:     nextRank,
		}}); err != nil {
			return RosterResult{}, fmt.Errorf("failed to add player to team: %w", err)
		}
		if err := s.repo.CreateMatchScores(ctx, db, []matchdb.PlayerMatchScore{{
			MatchID:  matchID,
			PlayerID: inPlayerID,
			GroupID:  match.GroupID,
		}}); err != nil {
			return RosterResult{}, fmt.Errorf("failed to create match score: %w", err)
		}
	}

	incoming := matchdb.RoundPlayer{
		MatchID:        matchID,
		RoundNumber:    roundNumber,
		PlayerID:       inPlayerID,
		TeamID:         outgoing.TeamID,
		PlayerPosition: outgoing.PlayerPosition,
	}
	if err := s.repo.ReplaceRoundPlayer(ctx, db, outPlayerID, incoming); err != nil {
		return RosterResult{}, fmt.Errorf("failed to replace round player: %w", err)
	}

	details := RoundDetails{RoundNumber: roundNumber, TrackID: round.TrackID}
	for _, rp := range lineup {
		if rp.PlayerID == outPlayerID {
			rp = incoming
		}
		details.Lineup = append(details.Lineup, matchdomain.LineupSlot{PlayerID: rp.PlayerID, TeamNum: rp.PlayerPosition})
	}
	return success(details), nil
}
