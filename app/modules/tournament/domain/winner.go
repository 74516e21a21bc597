package tournamentdomain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Standing is a player's place on the tournament ladder.
type Standing struct {
	PlayerID  uuid.UUID
	Rating    int
	CreatedAt time.Time
}

// PickWinner returns the highest rated player. Equal ratings go to whoever
// joined the ladder first, then to the lower player id.
func PickWinner(standings []Standing) (Standing, bool) {
	if len(standings) == 0 {
		return Standing{}, false
	}
	best := standings[0]
	for _, s := range standings[1:] {
		if ranksAbove(s, best) {
			best = s
		}
	}
	return best, true
}

func ranksAbove(a, b Standing) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.PlayerID[:], b.PlayerID[:]) < 0
}
