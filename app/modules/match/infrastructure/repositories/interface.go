package matchdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the persistence contract for matches and the rating
// ladders they feed. Every method accepts an optional bun.IDB so it can run
// inside a caller's transaction; nil falls back to the repository's own handle.
type Repository interface {
	// --- Players & tracks ---
	GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error)
	// GetPlayersForUpdate reads the players and locks their rows until the
	// transaction ends.
	GetPlayersForUpdate(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error)
	CreatePlayer(ctx context.Context, db bun.IDB, player *Player) error
	UpdatePlayerRatings(ctx context.Context, db bun.IDB, updates []RatingUpdate) error
	ListTrackIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error)
	CountPlayedTrackRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error)
	// ListRecentTrackIDs returns up to limit track ids played in the
	// tournament, most recent first.
	ListRecentTrackIDs(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, limit int) ([]uuid.UUID, error)

	// --- Tournament ladder ---
	GetTournamentRef(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*TournamentRef, error)
	// GetOrCreateTournamentScores returns the tournament rating of every
	// player, inserting startRating for players seen for the first time. The
	// returned rows stay locked until the transaction ends.
	GetOrCreateTournamentScores(ctx context.Context, db bun.IDB, tournamentID, groupID uuid.UUID, playerIDs []uuid.UUID, startRating int) (map[uuid.UUID]int, error)
	UpdateTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, updates []RatingUpdate) error

	// --- Matches & teams ---
	CreateMatch(ctx context.Context, db bun.IDB, match *Match) error
	GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error)
	// GetMatchForUpdate reads the match and locks its row until the transaction ends.
	GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error)
	MarkMatchCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID) error
	CreateTeams(ctx context.Context, db bun.IDB, teams []Team) error
	CreateTeamPlayers(ctx context.Context, db bun.IDB, members []TeamPlayer) error
	GetTeams(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Team, error)
	// GetTeamRoster lists every team member of the match ordered by team number and rank.
	GetTeamRoster(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]TeamMember, error)
	SaveTeamScores(ctx context.Context, db bun.IDB, scores []TeamMatchScore) error

	// --- Rounds ---
	CreateRounds(ctx context.Context, db bun.IDB, rounds []Round) error
	CreateRoundPlayers(ctx context.Context, db bun.IDB, players []RoundPlayer) error
	GetRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Round, error)
	// GetRoundForUpdate reads the round and locks its row until the transaction ends.
	GetRoundForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) (*Round, error)
	GetRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) ([]RoundPlayer, error)
	// GetMatchRoundPlayers lists the lineups of every round of the match.
	GetMatchRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]RoundPlayer, error)
	ReplaceRoundPlayer(ctx context.Context, db bun.IDB, outPlayerID uuid.UUID, in RoundPlayer) error
	// MarkRoundCompleted flips the round to completed. It returns
	// ErrNoRowsAffected when the round was already completed.
	MarkRoundCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) error
	CountIncompleteRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error)

	// --- Scores ---
	InsertRaceScores(ctx context.Context, db bun.IDB, scores []PlayerRaceScore) error
	GetRaceScoresForMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]PlayerRaceScore, error)
	InsertContributions(ctx context.Context, db bun.IDB, contributions []TeammateEloContribution) error
	CreateMatchScores(ctx context.Context, db bun.IDB, scores []PlayerMatchScore) error
	GetMatchScores(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]PlayerMatchScore, error)
	// UpsertMatchScores stores the given aggregates, replacing existing rows.
	UpsertMatchScores(ctx context.Context, db bun.IDB, scores []PlayerMatchScore) error
}
