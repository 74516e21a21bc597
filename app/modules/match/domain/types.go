package matchdomain

import "github.com/google/uuid"

// PlayerRating is a player together with the rating used for allocation.
type PlayerRating struct {
	PlayerID uuid.UUID `json:"player_id"`
	Rating   int       `json:"rating"`
}

// Team is a numbered group of players. Players are kept in draft order.
type Team struct {
	TeamNum int            `json:"team_num"`
	Players []PlayerRating `json:"players"`
}

// TotalRating sums the ratings of every player on the team.
func (t Team) TotalRating() int {
	total := 0
	for _, p := range t.Players {
		total += p.Rating
	}
	return total
}

// LineupSlot is one team's representative in a round.
type LineupSlot struct {
	PlayerID uuid.UUID `json:"player_id"`
	TeamNum  int       `json:"team_num"`
}

// Lineup lists who races in a round, one slot per team in team order.
type Lineup struct {
	RoundNumber int          `json:"round_number"`
	Slots       []LineupSlot `json:"slots"`
}

// PlayerIDs returns the lineup's players in slot order.
func (l Lineup) PlayerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(l.Slots))
	for i, s := range l.Slots {
		ids[i] = s.PlayerID
	}
	return ids
}
