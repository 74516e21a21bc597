package matchdomain

import (
	"math"

	"github.com/google/uuid"
)

// ContributionRate is the share of a racer's tournament rating change that is
// passed on to each teammate.
const ContributionRate = 0.2

// Contribution records how much of a source's change was shared with one teammate.
type Contribution struct {
	SourcePlayerID      uuid.UUID `json:"source_player_id"`
	BeneficiaryPlayerID uuid.UUID `json:"beneficiary_player_id"`
	Amount              int       `json:"amount"`
}

// ContributionResult holds every contribution plus the per-beneficiary total.
type ContributionResult struct {
	Contributions []Contribution
	Adjustments   map[uuid.UUID]int
	// Beneficiaries lists adjusted players in the order they first received something.
	Beneficiaries []uuid.UUID
}

// ContributionAmount is round(change * ContributionRate), half away from zero.
func ContributionAmount(change int) int {
	return int(math.Round(float64(change) * ContributionRate))
}

// CalculateTeammateContributions shares every racer's tournament change with
// each other member of their team, including teammates who sat the race out.
// roster maps a player to the full list of players on their team.
func CalculateTeammateContributions(changes []RatingChange, roster map[uuid.UUID][]uuid.UUID) ContributionResult {
	result := ContributionResult{Adjustments: make(map[uuid.UUID]int)}

	for _, change := range changes {
		amount := ContributionAmount(change.Change)
		for _, mate := range roster[change.PlayerID] {
			if mate == change.PlayerID {
				continue
			}
			result.Contributions = append(result.Contributions, Contribution{
				SourcePlayerID:      change.PlayerID,
				BeneficiaryPlayerID: mate,
				Amount:              amount,
			})
			if _, seen := result.Adjustments[mate]; !seen {
				result.Beneficiaries = append(result.Beneficiaries, mate)
			}
			result.Adjustments[mate] += amount
		}
	}
	return result
}

// RosterByPlayer turns team rosters into the player -> teammates lookup used
// by CalculateTeammateContributions.
func RosterByPlayer(teams map[int][]uuid.UUID) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, members := range teams {
		for _, id := range members {
			out[id] = members
		}
	}
	return out
}
