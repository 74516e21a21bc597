package matchdomain

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// ErrNotEnoughTracks is returned when more distinct tracks are requested than exist.
var ErrNotEnoughTracks = errors.New("not enough tracks in catalog")

// DrawTracks picks count distinct tracks, treating the catalog as a shuffle bag.
//
// playedCount is the number of track-rounds already played in the tournament
// and recent lists the tracks of those rounds, most recent first. The last
// playedCount % len(catalog) tracks have been drawn in the current cycle and
// are only reused when the remaining pool is too small, in which case the
// shortfall comes from a freshly shuffled cycle.
func DrawTracks(catalog, recent []uuid.UUID, playedCount, count int, rng *rand.Rand) ([]uuid.UUID, error) {
	if count <= 0 {
		return []uuid.UUID{}, nil
	}
	if count > len(catalog) {
		return nil, ErrNotEnoughTracks
	}

	cyclePosition := playedCount % len(catalog)
	drawn := make(map[uuid.UUID]bool, cyclePosition)
	for _, id := range recent[:min(cyclePosition, len(recent))] {
		drawn[id] = true
	}

	var available, used []uuid.UUID
	for _, id := range catalog {
		if drawn[id] {
			used = append(used, id)
		} else {
			available = append(available, id)
		}
	}

	shuffle(rng, available)
	if len(available) >= count {
		return available[:count], nil
	}

	shuffle(rng, used)
	selected := slices.Concat(available, used[:count-len(available)])
	shuffle(rng, selected)
	return selected, nil
}

func shuffle(rng *rand.Rand, ids []uuid.UUID) {
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}
