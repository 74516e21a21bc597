package matchdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Player is a member of a group with an all-time rating.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	GroupID        uuid.UUID `bun:"group_id,type:uuid,notnull" json:"group_id"`
	Name           string    `bun:"name,notnull" json:"name"`
	EloRating      int       `bun:"elo_rating,notnull,default:1200" json:"elo_rating"`
	AvatarFilename *string   `bun:"avatar_filename" json:"avatar_filename,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Track is an entry of the track catalog.
type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:tr"`

	ID   uuid.UUID `bun:"id,pk,type:uuid"`
	Name string    `bun:"name,notnull,unique"`
}

// TournamentRef is the slice of a tournament the match module needs to decide
// whether matches may still be played in it.
type TournamentRef struct {
	bun.BaseModel `bun:"table:tournaments,alias:tn"`

	ID       uuid.UUID  `bun:"id,pk,type:uuid"`
	GroupID  uuid.UUID  `bun:"group_id,type:uuid"`
	WinnerID *uuid.UUID `bun:"winner_id,type:uuid"`
}

// Closed reports whether a winner has been declared.
func (t *TournamentRef) Closed() bool { return t.WinnerID != nil }

type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	GroupID      uuid.UUID `bun:"group_id,type:uuid,notnull" json:"group_id"`
	TournamentID uuid.UUID `bun:"tournament_id,type:uuid,notnull" json:"tournament_id"`
	Time         time.Time `bun:"time,notnull" json:"time"`
	Rounds       int       `bun:"rounds,notnull" json:"rounds"`
	Completed    bool      `bun:"completed,notnull,default:false" json:"completed"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID      uuid.UUID `bun:"id,pk,type:uuid"`
	GroupID uuid.UUID `bun:"group_id,type:uuid,notnull"`
	MatchID uuid.UUID `bun:"match_id,type:uuid,notnull"`
	TeamNum int       `bun:"team_num,notnull"`
	Score   *int      `bun:"score"`
}

// TeamPlayer places a player on a team. Rank is the draft order, starting at 1.
type TeamPlayer struct {
	bun.BaseModel `bun:"table:team_players,alias:tp"`

	GroupID  uuid.UUID `bun:"group_id,type:uuid,notnull"`
	TeamID   uuid.UUID `bun:"team_id,pk,type:uuid"`
	PlayerID uuid.UUID `bun:"player_id,pk,type:uuid"`
	Rank     int       `bun:"rank,notnull"`
}

// TeamMember is a roster row joined with its team number.
type TeamMember struct {
	TeamID   uuid.UUID `bun:"team_id"`
	TeamNum  int       `bun:"team_num"`
	PlayerID uuid.UUID `bun:"player_id"`
	Rank     int       `bun:"rank"`
}

type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	MatchID     uuid.UUID  `bun:"match_id,pk,type:uuid"`
	RoundNumber int        `bun:"round_number,pk"`
	TrackID     *uuid.UUID `bun:"track_id,type:uuid"`
	Completed   bool       `bun:"completed,notnull,default:false"`
}

// RoundPlayer is one racer of a round. PlayerPosition is the racer's slot in
// the lineup, which is their team number.
type RoundPlayer struct {
	bun.BaseModel `bun:"table:round_players,alias:rp"`

	MatchID        uuid.UUID `bun:"match_id,pk,type:uuid"`
	RoundNumber    int       `bun:"round_number,pk"`
	PlayerID       uuid.UUID `bun:"player_id,pk,type:uuid"`
	TeamID         uuid.UUID `bun:"team_id,type:uuid,notnull"`
	PlayerPosition int       `bun:"player_position,notnull"`
}

type PlayerRaceScore struct {
	bun.BaseModel `bun:"table:player_race_scores,alias:prs"`

	MatchID             uuid.UUID `bun:"match_id,pk,type:uuid"`
	RoundNumber         int       `bun:"round_number,pk"`
	PlayerID            uuid.UUID `bun:"player_id,pk,type:uuid"`
	GroupID             uuid.UUID `bun:"group_id,type:uuid,notnull"`
	Position            int       `bun:"position,notnull"`
	AllTimeEloChange    int       `bun:"all_time_elo_change,notnull"`
	AllTimeEloAfter     int       `bun:"all_time_elo_after,notnull"`
	TournamentEloChange int       `bun:"tournament_elo_change,notnull"`
	TournamentEloAfter  int       `bun:"tournament_elo_after,notnull"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PlayerMatchScore aggregates a player's rounds within one match. The
// tournament change is split into what the player won racing and what
// teammates passed on.
type PlayerMatchScore struct {
	bun.BaseModel `bun:"table:player_match_scores,alias:pms"`

	MatchID                        uuid.UUID `bun:"match_id,pk,type:uuid"`
	PlayerID                       uuid.UUID `bun:"player_id,pk,type:uuid"`
	GroupID                        uuid.UUID `bun:"group_id,type:uuid,notnull"`
	Position                       int       `bun:"position,notnull"`
	EloChange                      int       `bun:"elo_change,notnull"`
	TournamentEloChange            int       `bun:"tournament_elo_change,notnull"`
	TournamentEloFromRaces         int       `bun:"tournament_elo_from_races,notnull"`
	TournamentEloFromContributions int       `bun:"tournament_elo_from_contributions,notnull"`
}

type TeammateEloContribution struct {
	bun.BaseModel `bun:"table:teammate_elo_contributions,alias:tec"`

	MatchID             uuid.UUID `bun:"match_id,pk,type:uuid"`
	RoundNumber         int       `bun:"round_number,pk"`
	SourcePlayerID      uuid.UUID `bun:"source_player_id,pk,type:uuid"`
	BeneficiaryPlayerID uuid.UUID `bun:"beneficiary_player_id,pk,type:uuid"`
	GroupID             uuid.UUID `bun:"group_id,type:uuid,notnull"`
	ContributionAmount  int       `bun:"contribution_amount,notnull"`
}

type TeamMatchScore struct {
	bun.BaseModel `bun:"table:team_match_scores,alias:tms"`

	MatchID uuid.UUID `bun:"match_id,pk,type:uuid"`
	TeamID  uuid.UUID `bun:"team_id,pk,type:uuid"`
	GroupID uuid.UUID `bun:"group_id,type:uuid,notnull"`
	Score   float64   `bun:"score,notnull"`
}

// PlayerTournamentScore is the per-tournament rating ladder.
type PlayerTournamentScore struct {
	bun.BaseModel `bun:"table:player_tournament_scores,alias:pts"`

	PlayerID     uuid.UUID `bun:"player_id,pk,type:uuid"`
	TournamentID uuid.UUID `bun:"tournament_id,pk,type:uuid"`
	GroupID      uuid.UUID `bun:"group_id,type:uuid,notnull"`
	EloRating    int       `bun:"elo_rating,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RatingUpdate sets a player's rating on one of the ladders.
type RatingUpdate struct {
	PlayerID uuid.UUID
	Rating   int
}
