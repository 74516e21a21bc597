package tournamentservice

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/clock"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

type fixture struct {
	repo    *FakeTournamentRepo
	pub     *FakePublisher
	sched   *FakeScheduler
	svc     *TournamentService
	groupID uuid.UUID
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    NewFakeTournamentRepo(),
		pub:     &FakePublisher{},
		sched:   &FakeScheduler{},
		groupID: uuid.New(),
		now:     time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC),
	}
	f.svc = NewTournamentService(
		f.repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		WithClock(clock.NewFixedClock(f.now)),
		WithPublisher(f.pub),
		WithScheduler(f.sched),
	)
	return f
}

// addTournament stores an open tournament that started a week ago.
func (f *fixture) addTournament() uuid.UUID {
	id := uuid.New()
	f.repo.Tournaments[id] = tournamentdb.Tournament{
		ID:        id,
		GroupID:   f.groupID,
		Name:      "Spring Cup",
		StartDate: f.now.AddDate(0, 0, -7),
	}
	return id
}

// addStandings puts players on the ladder in the order given; each joined a
// minute after the previous one.
func (f *fixture) addStandings(tournamentID uuid.UUID, ratings ...int) []uuid.UUID {
	ids := make([]uuid.UUID, len(ratings))
	for i, r := range ratings {
		ids[i] = uuid.New()
		f.repo.Standings[tournamentID] = append(f.repo.Standings[tournamentID], tournamentdb.Standing{
			PlayerID:      ids[i],
			Name:          string(rune('A' + i)),
			Rating:        r,
			AllTimeRating: 1200,
			CreatedAt:     f.now.Add(time.Duration(i) * time.Minute),
		})
	}
	return ids
}
