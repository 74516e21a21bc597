package matchdomain

var positionPoints = [...]int{15, 12, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// PositionToPoints converts a finishing position to team points.
// Positions past 12th score nothing.
func PositionToPoints(position int) int {
	if position < 1 || position > len(positionPoints) {
		return 0
	}
	return positionPoints[position-1]
}

// TeamScore is the average points per round earned by a team.
func TeamScore(positions []int, rounds int) float64 {
	if rounds <= 0 {
		return 0
	}
	total := 0
	for _, p := range positions {
		total += PositionToPoints(p)
	}
	return float64(total) / float64(rounds)
}
