package tournamentdomain

import (
	"github.com/Black-And-White-Club/kart-bot/pkg/grouping"
	"github.com/google/uuid"
)

// StatType names one of the awards handed out when a tournament closes.
type StatType string

const (
	StatBestRace      StatType = "best_race"
	StatWorstRace     StatType = "worst_race"
	StatBiggestSwing  StatType = "biggest_swing"
	StatBestTeammate  StatType = "best_teammate"
	StatWorstTeammate StatType = "worst_teammate"
	StatMostHelped    StatType = "most_helped"
	StatMostHurt      StatType = "most_hurt"
	StatBestMatch     StatType = "best_match"
	StatWorstMatch    StatType = "worst_match"
)

// Extra data keys of the biggest_swing stat.
const (
	ExtraHighValue = "high_value"
	ExtraLowValue  = "low_value"
)

type RaceRecord struct {
	PlayerID            uuid.UUID
	TournamentEloChange int
	TournamentEloAfter  int
}

type ContributionRecord struct {
	SourcePlayerID      uuid.UUID
	BeneficiaryPlayerID uuid.UUID
	Amount              int
}

type MatchRecord struct {
	PlayerID            uuid.UUID
	TournamentEloChange int
}

// History is everything recorded for a tournament, in the order it happened.
type History struct {
	Races         []RaceRecord
	Contributions []ContributionRecord
	Matches       []MatchRecord
}

type Stat struct {
	Type     StatType       `json:"stat_type"`
	PlayerID uuid.UUID      `json:"player_id"`
	Value    int            `json:"value"`
	Extra    map[string]int `json:"extra_data,omitempty"`
}

// ComputeStats derives the closing awards. A category without data is left
// out; ties go to whoever appears first in the history.
func ComputeStats(h History) []Stat {
	var stats []Stat

	if len(h.Races) > 0 {
		best, worst := extremes(h.Races, func(r RaceRecord) int { return r.TournamentEloChange })
		stats = append(stats,
			Stat{Type: StatBestRace, PlayerID: best.PlayerID, Value: best.TournamentEloChange},
			Stat{Type: StatWorstRace, PlayerID: worst.PlayerID, Value: worst.TournamentEloChange},
		)
		stats = append(stats, biggestSwing(h.Races))
	}

	if len(h.Contributions) > 0 {
		given := grouping.Sum(
			grouping.By(h.Contributions, func(c ContributionRecord) uuid.UUID { return c.SourcePlayerID }),
			func(c ContributionRecord) int { return c.Amount },
		)
		received := grouping.Sum(
			grouping.By(h.Contributions, func(c ContributionRecord) uuid.UUID { return c.BeneficiaryPlayerID }),
			func(c ContributionRecord) int { return c.Amount },
		)
		total := func(t grouping.Total[uuid.UUID, int]) int { return t.Value }

		bestMate, worstMate := extremes(given, total)
		helped, hurt := extremes(received, total)
		stats = append(stats,
			Stat{Type: StatBestTeammate, PlayerID: bestMate.Key, Value: bestMate.Value},
			Stat{Type: StatWorstTeammate, PlayerID: worstMate.Key, Value: worstMate.Value},
			Stat{Type: StatMostHelped, PlayerID: helped.Key, Value: helped.Value},
			Stat{Type: StatMostHurt, PlayerID: hurt.Key, Value: hurt.Value},
		)
	}

	if len(h.Matches) > 0 {
		best, worst := extremes(h.Matches, func(m MatchRecord) int { return m.TournamentEloChange })
		stats = append(stats,
			Stat{Type: StatBestMatch, PlayerID: best.PlayerID, Value: best.TournamentEloChange},
			Stat{Type: StatWorstMatch, PlayerID: worst.PlayerID, Value: worst.TournamentEloChange},
		)
	}

	return stats
}

func biggestSwing(races []RaceRecord) Stat {
	var swing Stat
	for i, g := range grouping.By(races, func(r RaceRecord) uuid.UUID { return r.PlayerID }) {
		high, low := extremes(g.Items, func(r RaceRecord) int { return r.TournamentEloAfter })
		delta := high.TournamentEloAfter - low.TournamentEloAfter
		if i == 0 || delta > swing.Value {
			swing = Stat{
				Type:     StatBiggestSwing,
				PlayerID: g.Key,
				Value:    delta,
				Extra: map[string]int{
					ExtraHighValue: high.TournamentEloAfter,
					ExtraLowValue:  low.TournamentEloAfter,
				},
			}
		}
	}
	return swing
}

// extremes returns the first item with the highest value and the first item
// with the lowest value. items must not be empty.
func extremes[T any](items []T, value func(T) int) (hi, lo T) {
	hi, lo = items[0], items[0]
	for _, it := range items[1:] {
		if value(it) > value(hi) {
			hi = it
		}
		if value(it) < value(lo) {
			lo = it
		}
	}
	return hi, lo
}
