package tournamentdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:tn"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	GroupID   uuid.UUID  `bun:"group_id,type:uuid,notnull" json:"group_id"`
	Name      string     `bun:"name,notnull" json:"name"`
	StartDate time.Time  `bun:"start_date,notnull" json:"start_date"`
	EndDate   *time.Time `bun:"end_date" json:"end_date"`
	WinnerID  *uuid.UUID `bun:"winner_id,type:uuid" json:"winner_id"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Closed reports whether a winner has been declared.
func (t *Tournament) Closed() bool { return t.WinnerID != nil }

// TournamentStat is one award stored when the tournament closes.
type TournamentStat struct {
	bun.BaseModel `bun:"table:tournament_stats,alias:ts"`

	ID           uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	TournamentID uuid.UUID      `bun:"tournament_id,type:uuid,notnull" json:"tournament_id"`
	StatType     string         `bun:"stat_type,notnull" json:"stat_type"`
	PlayerID     uuid.UUID      `bun:"player_id,type:uuid,notnull" json:"player_id"`
	Value        int            `bun:"value,notnull" json:"value"`
	ExtraData    map[string]int `bun:"extra_data,type:jsonb" json:"extra_data"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Standing is a tournament ladder row joined with the player.
type Standing struct {
	PlayerID      uuid.UUID `bun:"player_id" json:"player_id"`
	Name          string    `bun:"name" json:"name"`
	Rating        int       `bun:"elo_rating" json:"elo_rating"`
	AllTimeRating int       `bun:"all_time_rating" json:"all_time_rating"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}

// RaceRow is one race result of the tournament, in play order.
type RaceRow struct {
	MatchID             uuid.UUID `bun:"match_id"`
	MatchTime           time.Time `bun:"match_time"`
	RoundNumber         int       `bun:"round_number"`
	PlayerID            uuid.UUID `bun:"player_id"`
	TournamentEloChange int       `bun:"tournament_elo_change"`
	TournamentEloAfter  int       `bun:"tournament_elo_after"`
}

type ContributionRow struct {
	SourcePlayerID      uuid.UUID `bun:"source_player_id"`
	BeneficiaryPlayerID uuid.UUID `bun:"beneficiary_player_id"`
	Amount              int       `bun:"contribution_amount"`
}

type MatchScoreRow struct {
	MatchID             uuid.UUID `bun:"match_id"`
	PlayerID            uuid.UUID `bun:"player_id"`
	TournamentEloChange int       `bun:"tournament_elo_change"`
}
