package matchservice

import (
	"context"
	"errors"
	"maps"
	"slices"
	"testing"

	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestMatchService_RecordRoundResults_Validation(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		results []PlayerResult
		wantErr error
	}{
		{name: "no results", results: nil, wantErr: ErrNoResults},
		{name: "position zero", results: []PlayerResult{{a, 0}}, wantErr: ErrInvalidPosition},
		{name: "position past field", results: []PlayerResult{{a, 25}}, wantErr: ErrInvalidPosition},
		{name: "duplicate position", results: []PlayerResult{{a, 3}, {b, 3}}, wantErr: ErrDuplicatePosition},
		{name: "duplicate player", results: []PlayerResult{{a, 1}, {a, 2}}, wantErr: ErrDuplicatePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.svc.RecordRoundResults(context.Background(), uuid.New(), 1, tt.results)

			require.NoError(t, err)
			require.True(t, res.IsFailure())
			assert.ErrorIs(t, *res.Failure, tt.wantErr)
			assert.ErrorIs(t, *res.Failure, ErrValidation)
			assert.Empty(t, f.repo.Trace(), "validation must run before any repository call")
		})
	}
}

func TestMatchService_RecordRoundResults_Failures(t *testing.T) {
	tests := []struct {
		name       string
		round      int
		setup      func(f *fixture, players []uuid.UUID, matchID uuid.UUID)
		submit     func(players []uuid.UUID) []PlayerResult
		wantErr    error
		wantBranch error
	}{
		{
			name:  "unknown match",
			round: 1,
			setup: func(f *fixture, _ []uuid.UUID, matchID uuid.UUID) {
				delete(f.repo.Matches, matchID)
			},
			wantErr:    ErrMatchNotFound,
			wantBranch: ErrNotFound,
		},
		{
			name:  "completed match",
			round: 1,
			setup: func(f *fixture, _ []uuid.UUID, matchID uuid.UUID) {
				m := f.repo.Matches[matchID]
				m.Completed = true
				f.repo.Matches[matchID] = m
			},
			wantErr:    ErrMatchCompleted,
			wantBranch: ErrConflict,
		},
		{
			name:       "unknown round",
			round:      7,
			wantErr:    ErrRoundNotFound,
			wantBranch: ErrNotFound,
		},
		{
			name:  "round already scored",
			round: 1,
			setup: func(f *fixture, _ []uuid.UUID, _ uuid.UUID) {
				f.repo.Rounds[0].Completed = true
			},
			wantErr:    ErrRoundAlreadyScored,
			wantBranch: ErrConflict,
		},
		{
			name:  "concurrent submission claimed the round first",
			round: 1,
			setup: func(f *fixture, _ []uuid.UUID, _ uuid.UUID) {
				f.repo.MarkRoundCompletedFunc = func(context.Context, bun.IDB, uuid.UUID, int) error {
					return matchdb.ErrNoRowsAffected
				}
			},
			wantErr:    ErrRoundAlreadyScored,
			wantBranch: ErrConflict,
		},
		{
			name:  "missing participant",
			round: 1,
			submit: func(p []uuid.UUID) []PlayerResult {
				return []PlayerResult{{p[0], 1}, {p[1], 2}, {p[2], 3}}
			},
			wantErr:    ErrParticipantMismatch,
			wantBranch: ErrValidation,
		},
		{
			name:  "stranger in results",
			round: 1,
			submit: func(p []uuid.UUID) []PlayerResult {
				return []PlayerResult{{p[0], 1}, {p[1], 2}, {p[2], 3}, {uuid.New(), 4}}
			},
			wantErr:    ErrParticipantMismatch,
			wantBranch: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.addPlayers(1200, 1200, 1200, 1200)
			matchID := f.seedMatch([][]uuid.UUID{{p[0], p[1]}, {p[2], p[3]}}, [][]uuid.UUID{p, p})
			if tt.setup != nil {
				tt.setup(f, p, matchID)
			}
			results := []PlayerResult{{p[0], 1}, {p[1], 2}, {p[2], 3}, {p[3], 4}}
			if tt.submit != nil {
				results = tt.submit(p)
			}

			res, err := f.svc.RecordRoundResults(context.Background(), matchID, tt.round, results)

			require.NoError(t, err)
			require.True(t, res.IsFailure())
			assert.ErrorIs(t, *res.Failure, tt.wantErr)
			assert.ErrorIs(t, *res.Failure, tt.wantBranch)
			assert.NotContains(t, f.repo.Trace(), "InsertRaceScores")
			assert.Empty(t, f.repo.RaceScores)
			assert.Empty(t, f.pub.Published)
		})
	}
}

func TestMatchService_RecordRoundResults_InfrastructureError(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayers(1200, 1200)
	matchID := f.seedMatch([][]uuid.UUID{{p[0]}, {p[1]}}, [][]uuid.UUID{p})
	f.repo.InsertRaceScoresFunc = func(context.Context, bun.IDB, []matchdb.PlayerRaceScore) error {
		return errors.New("connection reset")
	}

	res, err := f.svc.RecordRoundResults(context.Background(), matchID, 1, []PlayerResult{{p[0], 1}, {p[1], 2}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "RecordRoundResults")
	assert.False(t, res.IsSuccess())
	assert.Empty(t, f.pub.Published)
}

func TestMatchService_RecordRoundResults_FirstRound(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayers(1200, 1200, 1200, 1200)
	a, b, c, d := p[0], p[1], p[2], p[3]
	matchID := f.seedMatch([][]uuid.UUID{{a, b}, {c, d}}, [][]uuid.UUID{{a, b, c, d}, {b, a, d, c}})

	res, err := f.svc.RecordRoundResults(context.Background(), matchID, 1,
		[]PlayerResult{{a, 1}, {b, 2}, {c, 3}, {d, 4}})

	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "unexpected failure: %v", res.Failure)
	outcome := res.Success
	assert.False(t, outcome.MatchCompleted)
	assert.Nil(t, outcome.TeamScores)

	// Four humans at 1200 in the top four spots of a 24-car field.
	wantAllTime := map[uuid.UUID]int{a: 1211, b: 1207, c: 1202, d: 1198}
	for id, rating := range wantAllTime {
		assert.Equal(t, rating, f.repo.Players[id].EloRating)
	}

	// Each racer passes 20% of their change to their one teammate.
	wantTournament := map[uuid.UUID]int{a: 1212, b: 1209, c: 1202, d: 1198}
	assert.Equal(t, wantTournament, f.repo.TournamentScores[f.tournamentID])

	require.Len(t, f.repo.Contributions, 4)
	assert.Equal(t, a, f.repo.Contributions[0].SourcePlayerID)
	assert.Equal(t, b, f.repo.Contributions[0].BeneficiaryPlayerID)
	assert.Equal(t, 2, f.repo.Contributions[0].ContributionAmount)
	assert.Equal(t, 1, f.repo.Contributions[1].ContributionAmount)

	require.Len(t, f.repo.RaceScores, 4)
	first := f.repo.RaceScores[0]
	assert.Equal(t, 11, first.AllTimeEloChange)
	assert.Equal(t, 1211, first.AllTimeEloAfter)
	assert.Equal(t, 11, first.TournamentEloChange)

	agg := f.repo.MatchScore(matchID, a)
	assert.Equal(t, 1, agg.Position)
	assert.Equal(t, 11, agg.EloChange)
	assert.Equal(t, 11, agg.TournamentEloFromRaces)
	assert.Equal(t, 1, agg.TournamentEloFromContributions)
	assert.Equal(t, 12, agg.TournamentEloChange)

	require.Len(t, f.pub.Published, 1)
	assert.Equal(t, matchID, f.pub.Published[0].MatchID)
	assert.Equal(t, 1, f.pub.Published[0].RoundNumber)
	assert.Equal(t, f.groupID, f.pub.Published[0].GroupID)
	assert.False(t, f.pub.Published[0].Completed)
}

func TestMatchService_RecordRoundResults_TwoRoundMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.addPlayers(1200, 1200, 1200, 1200)
	a, b, c, d := p[0], p[1], p[2], p[3]
	matchID := f.seedMatch([][]uuid.UUID{{a, b}, {c, d}}, [][]uuid.UUID{{a, b, c, d}, {b, a, d, c}})

	res, err := f.svc.RecordRoundResults(ctx, matchID, 1, []PlayerResult{{a, 1}, {b, 2}, {c, 3}, {d, 4}})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	t.Run("scoring the same round twice conflicts", func(t *testing.T) {
		scoresBefore := len(f.repo.RaceScores)
		contributionsBefore := len(f.repo.Contributions)
		playersBefore := maps.Clone(f.repo.Players)
		ladderBefore := maps.Clone(f.repo.TournamentScores[f.tournamentID])
		roundsBefore := slices.Clone(f.repo.Rounds)

		again, err := f.svc.RecordRoundResults(ctx, matchID, 1, []PlayerResult{{a, 4}, {b, 3}, {c, 2}, {d, 1}})

		require.NoError(t, err)
		require.True(t, again.IsFailure())
		assert.ErrorIs(t, *again.Failure, ErrRoundAlreadyScored)
		assert.ErrorIs(t, *again.Failure, ErrConflict)
		assert.Len(t, f.repo.RaceScores, scoresBefore)
		assert.Len(t, f.repo.Contributions, contributionsBefore)
		for _, id := range []uuid.UUID{a, b, c, d} {
			assert.Equal(t, playersBefore[id].EloRating, f.repo.Players[id].EloRating)
		}
		assert.Equal(t, ladderBefore, f.repo.TournamentScores[f.tournamentID])
		assert.Equal(t, roundsBefore, f.repo.Rounds)
		assert.True(t, f.repo.Rounds[0].Completed)
	})

	res, err = f.svc.RecordRoundResults(ctx, matchID, 2, []PlayerResult{{b, 1}, {a, 2}, {d, 3}, {c, 4}})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	outcome := res.Success
	assert.True(t, outcome.MatchCompleted)
	// (15+12+12+15)/2 and (10+9+9+10)/2
	assert.Equal(t, map[int]float64{1: 27, 2: 19}, outcome.TeamScores)
	assert.True(t, f.repo.Matches[matchID].Completed)
	require.Len(t, f.repo.TeamScores, 2)
	for _, team := range f.repo.Teams {
		require.NotNil(t, team.Score)
	}
	assert.Equal(t, 27, *f.repo.Teams[0].Score)
	assert.Equal(t, 19, *f.repo.Teams[1].Score)

	// Average of 1st and 2nd rounds half away from zero.
	assert.Equal(t, 2, f.repo.MatchScore(matchID, a).Position)
	assert.Equal(t, 4, f.repo.MatchScore(matchID, c).Position)

	last := f.pub.Published[len(f.pub.Published)-1]
	assert.True(t, last.Completed)
	assert.Equal(t, 2, last.RoundNumber)

	t.Run("completed match rejects further results", func(t *testing.T) {
		again, err := f.svc.RecordRoundResults(ctx, matchID, 2, []PlayerResult{{b, 1}, {a, 2}, {d, 3}, {c, 4}})
		require.NoError(t, err)
		require.True(t, again.IsFailure())
		assert.ErrorIs(t, *again.Failure, ErrMatchCompleted)
	})
}

func TestMatchService_RecordRoundResults_LocksRatingRows(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayers(1200, 1200)
	a, b := p[0], p[1]
	matchID := f.seedMatch([][]uuid.UUID{{a}, {b}}, [][]uuid.UUID{{a, b}})

	res, err := f.svc.RecordRoundResults(context.Background(), matchID, 1, []PlayerResult{{a, 1}, {b, 2}})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	trace := f.repo.Trace()
	assert.NotContains(t, trace, "GetPlayersByIDs")
	lock := slices.Index(trace, "GetPlayersForUpdate")
	ladder := slices.Index(trace, "GetOrCreateTournamentScores")
	require.GreaterOrEqual(t, lock, 0)
	require.GreaterOrEqual(t, ladder, 0)
	assert.Less(t, lock, slices.Index(trace, "UpdatePlayerRatings"))
	assert.Less(t, ladder, slices.Index(trace, "UpdateTournamentScores"))
}

func TestMatchService_RecordRoundResults_BenchedTeammateGetsShare(t *testing.T) {
	f := newFixture(t)
	p := f.addPlayers(1200, 1200, 1200)
	racer, benched, rival := p[0], p[1], p[2]
	matchID := f.seedMatch([][]uuid.UUID{{racer, benched}, {rival}}, [][]uuid.UUID{{racer, rival}, {benched, rival}})

	res, err := f.svc.RecordRoundResults(context.Background(), matchID, 1, []PlayerResult{{racer, 1}, {rival, 2}})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	racerChange := res.Success.Changes[0].TournamentChange
	share := f.repo.MatchScore(matchID, benched)
	assert.Equal(t, 0, share.EloChange)
	assert.Equal(t, 0, share.TournamentEloFromRaces)
	assert.Equal(t, matchdomain.ContributionAmount(racerChange), share.TournamentEloFromContributions)
	assert.Equal(t, 1200+matchdomain.ContributionAmount(racerChange), f.repo.TournamentScores[f.tournamentID][benched])
	assert.Equal(t, 1200, f.repo.Players[benched].EloRating, "all-time rating only moves for racers")
	assert.True(t, slices.ContainsFunc(f.repo.Contributions, func(c matchdb.TeammateEloContribution) bool {
		return c.SourcePlayerID == racer && c.BeneficiaryPlayerID == benched
	}))
}

func TestMatchService_RecordRoundResults_PublishErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	f.pub.Err = errors.New("nats unavailable")
	p := f.addPlayers(1200, 1200)
	matchID := f.seedMatch([][]uuid.UUID{{p[0]}, {p[1]}}, [][]uuid.UUID{p})

	res, err := f.svc.RecordRoundResults(context.Background(), matchID, 1, []PlayerResult{{p[0], 2}, {p[1], 1}})

	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.True(t, res.Success.MatchCompleted)
	assert.Len(t, f.pub.Published, 1)
}
