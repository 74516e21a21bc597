package matchdomain

import (
	"cmp"
	"slices"
)

// usagePenalty outweighs any realistic rating gap so that an already used
// position is only picked again when nothing else is left.
const usagePenalty = 5000

// AllocateRaces schedules one player per team for each of rounds rounds.
//
// Players are sorted by rating inside each team. The largest team (the first
// one when several tie) rotates through its players in order; every other
// team follows that rotation so that players of similar rank race together,
// while keeping each player's number of races within one of their teammates'.
// Teams must be non-empty.
func AllocateRaces(teams []Team, rounds int) []Lineup {
	if len(teams) == 0 || rounds <= 0 {
		return nil
	}

	sorted := make([][]PlayerRating, len(teams))
	primary := 0
	for i, team := range teams {
		if len(team.Players) == 0 {
			panic("matchdomain: cannot schedule races for an empty team")
		}
		players := slices.Clone(team.Players)
		slices.SortStableFunc(players, func(a, b PlayerRating) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
		sorted[i] = players
		if len(players) > len(sorted[primary]) {
			primary = i
		}
	}

	schedules := make([][]int, len(teams))
	for i := range teams {
		switch {
		case i == primary:
			schedules[i] = rotationSchedule(len(sorted[i]), rounds)
		case rounds%len(sorted[i]) == 0:
			schedules[i] = proportionalSchedule(len(sorted[i]), len(sorted[primary]), rounds)
		default:
			schedules[i] = proximitySchedule(sorted[i], sorted[primary], rounds)
		}
	}

	lineups := make([]Lineup, rounds)
	for r := range lineups {
		slots := make([]LineupSlot, len(teams))
		for i, team := range teams {
			slots[i] = LineupSlot{
				PlayerID: sorted[i][schedules[i][r]].PlayerID,
				TeamNum:  team.TeamNum,
			}
		}
		lineups[r] = Lineup{RoundNumber: r + 1, Slots: slots}
	}
	return lineups
}

func rotationSchedule(size, rounds int) []int {
	schedule := make([]int, rounds)
	for r := range schedule {
		schedule[r] = r % size
	}
	return schedule
}

// proportionalSchedule is used when every position is raced the same number
// of times. Position p of the primary team maps to p*size/primarySize.
func proportionalSchedule(size, primarySize, rounds int) []int {
	target := rounds / size
	used := make([]int, size)
	schedule := make([]int, rounds)

	for r := range schedule {
		chosen := (r % primarySize) * size / primarySize
		if used[chosen] >= target {
			chosen = leastUsed(used, func(p int) bool { return used[p] < target })
		}
		schedule[r] = chosen
		used[chosen]++
	}
	return schedule
}

// proximitySchedule is used when rounds do not divide evenly. The first
// rounds%size positions race once more than the rest, and each round picks
// the open position closest in rating to the primary team's racer.
func proximitySchedule(players, primaryPlayers []PlayerRating, rounds int) []int {
	size := len(players)
	targets := make([]int, size)
	for p := range targets {
		targets[p] = rounds / size
		if p < rounds%size {
			targets[p]++
		}
	}

	used := make([]int, size)
	schedule := make([]int, rounds)
	for r := range schedule {
		primaryRating := primaryPlayers[r%len(primaryPlayers)].Rating

		chosen, bestCost := 0, -1
		for p := range players {
			if used[p] >= targets[p] {
				continue
			}
			cost := abs(players[p].Rating-primaryRating) + used[p]*usagePenalty
			if bestCost == -1 || cost < bestCost {
				chosen, bestCost = p, cost
			}
		}
		schedule[r] = chosen
		used[chosen]++
	}
	return schedule
}

// leastUsed returns the first open position with the lowest use count, or 0.
func leastUsed(used []int, open func(int) bool) int {
	chosen := -1
	for p := range used {
		if !open(p) {
			continue
		}
		if chosen == -1 || used[p] < used[chosen] {
			chosen = p
		}
	}
	if chosen == -1 {
		return 0
	}
	return chosen
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
