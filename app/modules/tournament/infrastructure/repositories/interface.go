package tournamentdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists tournaments and reads the history their closing stats
// are computed from. A nil bun.IDB uses the repository's own handle.
type Repository interface {
	CreateTournament(ctx context.Context, db bun.IDB, t *Tournament) error
	GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error)
	// GetTournamentForUpdate reads the tournament and locks its row until the transaction ends.
	GetTournamentForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error)
	// SetWinner declares the winner. It returns ErrNoRowsAffected when one was already set.
	SetWinner(ctx context.Context, db bun.IDB, id, winnerID uuid.UUID) error

	// GetStandings lists the ladder, best first.
	GetStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Standing, error)
	GetRaceHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]RaceRow, error)
	GetContributionHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]ContributionRow, error)
	GetMatchScoreHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]MatchScoreRow, error)

	InsertStats(ctx context.Context, db bun.IDB, stats []TournamentStat) error
	GetStats(ctx context.Context, db bun.IDB, id uuid.UUID) ([]TournamentStat, error)
}
