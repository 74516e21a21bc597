package matchdomain

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// AllocationMode selects how players are split into teams.
type AllocationMode string

const (
	AllocationBalanced AllocationMode = "balanced"
	AllocationRandom   AllocationMode = "random"
)

// ParseAllocationMode maps user input to a mode. Empty input means balanced.
func ParseAllocationMode(s string) (AllocationMode, error) {
	switch AllocationMode(s) {
	case "", AllocationBalanced:
		return AllocationBalanced, nil
	case AllocationRandom:
		return AllocationRandom, nil
	default:
		return "", fmt.Errorf("unknown team allocation mode %q", s)
	}
}

// TeamSizes splits n players into k teams whose sizes differ by at most one,
// larger teams first.
func TeamSizes(n, k int) []int {
	sizes := make([]int, k)
	base, remainder := n/k, n%k
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes
}

// AllocateTeams splits players into at most teamCount teams.
//
// Balanced mode drafts players strongest first, always onto the non-full team
// with the lowest rating total; ties go to the lower team number. Random mode
// shuffles with rng and slices into the same sizes. rng is only read in random
// mode.
func AllocateTeams(players []PlayerRating, teamCount int, mode AllocationMode, rng *rand.Rand) []Team {
	if teamCount <= 0 {
		panic("matchdomain: team count must be positive")
	}
	if len(players) == 0 {
		return nil
	}
	numTeams := min(teamCount, len(players))
	sizes := TeamSizes(len(players), numTeams)

	teams := make([]Team, numTeams)
	for i := range teams {
		teams[i] = Team{TeamNum: i + 1, Players: make([]PlayerRating, 0, sizes[i])}
	}

	if mode == AllocationRandom {
		shuffled := slices.Clone(players)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		offset := 0
		for i, size := range sizes {
			teams[i].Players = append(teams[i].Players, shuffled[offset:offset+size]...)
			offset += size
		}
		return teams
	}

	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b PlayerRating) int {
		return cmp.Compare(b.Rating, a.Rating)
	})

	totals := make([]int, numTeams)
	for _, p := range sorted {
		best := -1
		for i := range teams {
			if len(teams[i].Players) >= sizes[i] {
				continue
			}
			if best == -1 || totals[i] < totals[best] {
				best = i
			}
		}
		teams[best].Players = append(teams[best].Players, p)
		totals[best] += p.Rating
	}
	return teams
}
