package testutils

import (
	"context"
	"fmt"
	"time"

	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s))}
}

// GeneratePlayers creates count players of one group with ratings spread
// around the default.
func (g *TestDataGenerator) GeneratePlayers(groupID uuid.UUID, count int) []matchdb.Player {
	players := make([]matchdb.Player, count)
	for i := range players {
		players[i] = matchdb.Player{
			ID:        uuid.New(),
			GroupID:   groupID,
			Name:      g.faker.Gamertag(),
			EloRating: g.faker.Number(1000, 1400),
		}
	}
	return players
}

// TournamentName returns a plausible cup name.
func (g *TestDataGenerator) TournamentName() string {
	return fmt.Sprintf("%s %s Cup", g.faker.Adjective(), g.faker.Animal())
}

// InsertPlayers stores players directly.
func InsertPlayers(ctx context.Context, db bun.IDB, players []matchdb.Player) error {
	if _, err := db.NewInsert().Model(&players).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert players: %w", err)
	}
	return nil
}

// PlayerIDs returns the ids in order.
func PlayerIDs(players []matchdb.Player) []uuid.UUID {
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
