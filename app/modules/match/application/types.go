package matchservice

import (
	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/results"
	"github.com/google/uuid"
)

// CreateMatchRequest describes a match to schedule in a tournament.
type CreateMatchRequest struct {
	TournamentID uuid.UUID
	PlayerIDs    []uuid.UUID
	Rounds       int
	// TeamsPerRace is both the number of teams and the number of racers
	// per round, since every team sends one player to each race.
	TeamsPerRace int
	Mode         matchdomain.AllocationMode
}

// PlayerResult is one finishing position submitted for a round.
type PlayerResult struct {
	PlayerID uuid.UUID `json:"player_id"`
	Position int       `json:"position"`
}

type TeamDetails struct {
	ID        uuid.UUID   `json:"id"`
	TeamNum   int         `json:"team_num"`
	Score     *int        `json:"score,omitempty"`
	PlayerIDs []uuid.UUID `json:"player_ids"`
}

type RoundDetails struct {
	RoundNumber int                      `json:"round_number"`
	TrackID     *uuid.UUID               `json:"track_id,omitempty"`
	Completed   bool                     `json:"completed"`
	Lineup      []matchdomain.LineupSlot `json:"lineup"`
}

// MatchDetails is a match with its teams and round lineups.
type MatchDetails struct {
	Match  matchdb.Match  `json:"match"`
	Teams  []TeamDetails  `json:"teams"`
	Rounds []RoundDetails `json:"rounds"`
}

// PlayerRoundChange reports both ladders for one racer of a scored round.
type PlayerRoundChange struct {
	PlayerID         uuid.UUID `json:"player_id"`
	Position         int       `json:"position"`
	AllTimeChange    int       `json:"all_time_change"`
	AllTimeRating    int       `json:"all_time_rating"`
	TournamentChange int       `json:"tournament_change"`
	TournamentRating int       `json:"tournament_rating"`
}

// RoundOutcome is the result of scoring a round. TeamScores is keyed by team
// number and only filled once the match is complete.
type RoundOutcome struct {
	MatchID        uuid.UUID                  `json:"match_id"`
	TournamentID   uuid.UUID                  `json:"tournament_id"`
	GroupID        uuid.UUID                  `json:"group_id"`
	RoundNumber    int                        `json:"round_number"`
	MatchCompleted bool                       `json:"match_completed"`
	Changes        []PlayerRoundChange        `json:"changes"`
	Contributions  []matchdomain.Contribution `json:"contributions"`
	TeamScores     map[int]float64            `json:"team_scores,omitempty"`
}

type (
	MatchResult  = results.OperationResult[MatchDetails, error]
	RoundResult  = results.OperationResult[RoundOutcome, error]
	RosterResult = results.OperationResult[RoundDetails, error]
	TeamsResult  = results.OperationResult[[]matchdomain.Team, error]
	LineupResult = results.OperationResult[[]matchdomain.Lineup, error]
	TracksResult = results.OperationResult[[]uuid.UUID, error]

	CreatedPlayerResult = results.OperationResult[matchdb.Player, error]
)

func failure[S any](err error) results.OperationResult[S, error] {
	return results.FailureResult[S, error](err)
}

func success[S any](s S) results.OperationResult[S, error] {
	return results.SuccessResult[S, error](s)
}
