package matchhandlers

import "github.com/google/uuid"

type createPlayerRequest struct {
	GroupID uuid.UUID `json:"group_id"`
	Name    string    `json:"name"`
}

type allocateTeamsRequest struct {
	PlayerIDs []uuid.UUID `json:"player_ids"`
	Teams     int         `json:"teams"`
	Mode      string      `json:"mode"`
}

type allocateRacesRequest struct {
	Teams  [][]uuid.UUID `json:"teams"`
	Rounds int           `json:"rounds"`
}

type createMatchRequest struct {
	TournamentID uuid.UUID   `json:"tournament_id"`
	PlayerIDs    []uuid.UUID `json:"player_ids"`
	Rounds       int         `json:"rounds"`
	TeamsPerRace int         `json:"teams_per_race"`
	Mode         string      `json:"mode"`
}

type resultEntry struct {
	PlayerID uuid.UUID `json:"player_id"`
	Position int       `json:"position"`
}

type recordResultsRequest struct {
	Results []resultEntry `json:"results"`
}

type swapRequest struct {
	OutPlayerID uuid.UUID `json:"out_player_id"`
	InPlayerID  uuid.UUID `json:"in_player_id"`
}
