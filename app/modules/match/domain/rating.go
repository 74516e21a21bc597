package matchdomain

import (
	"math"

	"github.com/google/uuid"
)

const (
	// FieldSize is the number of racers every rating calculation is run against.
	FieldSize = 24
	// KFactor scales how far a single race can move a rating.
	KFactor = 100

	CPUMaxRating  = 1400
	CPUMinRating  = 600
	CPURatingStep = 100
)

// RaceEntry is a human's finishing position and rating going into the race.
type RaceEntry struct {
	PlayerID      uuid.UUID
	Position      int
	CurrentRating int
}

// RatingChange is the outcome of a race for one human.
type RatingChange struct {
	PlayerID  uuid.UUID
	Position  int
	OldRating int
	NewRating int
	Change    int
}

// FieldSlot is one entry of the synthetic 24-racer field.
type FieldSlot struct {
	Position int
	Rating   int
	Human    bool
	PlayerID uuid.UUID
}

// CPURating is the rating assigned to a CPU finishing at position.
func CPURating(position int) int {
	return max(CPUMinRating, CPUMaxRating-(position-1)*CPURatingStep)
}

// SyntheticField fills every position not taken by a human with a CPU.
// The returned slice always has FieldSize entries ordered by position.
func SyntheticField(entries []RaceEntry) []FieldSlot {
	field := make([]FieldSlot, FieldSize)
	for i := range field {
		field[i] = FieldSlot{Position: i + 1, Rating: CPURating(i + 1)}
	}
	for _, e := range entries {
		field[e.Position-1] = FieldSlot{
			Position: e.Position,
			Rating:   e.CurrentRating,
			Human:    true,
			PlayerID: e.PlayerID,
		}
	}
	return field
}

// CalculateRatingChanges scores one race. Every human is rated against the
// other 23 entries of the synthetic field. Positions must be within
// 1..FieldSize and unique; callers validate that beforehand.
func CalculateRatingChanges(entries []RaceEntry) []RatingChange {
	field := SyntheticField(entries)

	changes := make([]RatingChange, 0, len(entries))
	for _, e := range entries {
		expected := expectedScore(e.CurrentRating, e.Position, field)
		actual := actualScore(e.Position)
		delta := int(math.Round(KFactor * (actual - expected)))

		changes = append(changes, RatingChange{
			PlayerID:  e.PlayerID,
			Position:  e.Position,
			OldRating: e.CurrentRating,
			NewRating: e.CurrentRating + delta,
			Change:    delta,
		})
	}
	return changes
}

func expectedScore(rating, position int, field []FieldSlot) float64 {
	var total float64
	opponents := 0
	for _, slot := range field {
		if slot.Position == position {
			continue
		}
		total += winProbability(rating, slot.Rating)
		opponents++
	}
	if opponents == 0 {
		return 0.5
	}
	return total / float64(opponents)
}

func winProbability(rating, opponent int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponent-rating)/400.0))
}

// actualScore maps 1st to 1.0 and last to 0.0.
func actualScore(position int) float64 {
	return float64(FieldSize-position) / float64(FieldSize-1)
}
