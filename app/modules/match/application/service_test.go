package matchservice

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/pkg/clock"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"
)

type fixture struct {
	repo         *FakeMatchRepo
	pub          *FakePublisher
	svc          *MatchService
	groupID      uuid.UUID
	tournamentID uuid.UUID
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:         NewFakeMatchRepo(),
		pub:          &FakePublisher{},
		groupID:      uuid.New(),
		tournamentID: uuid.New(),
		now:          time.Date(2026, 3, 6, 20, 0, 0, 0, time.UTC),
	}
	f.repo.Tournaments[f.tournamentID] = matchdb.TournamentRef{ID: f.tournamentID, GroupID: f.groupID}
	f.svc = NewMatchService(
		f.repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		WithClock(clock.NewFixedClock(f.now)),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithPublisher(f.pub),
	)
	return f
}

func (f *fixture) addPlayers(ratings ...int) []uuid.UUID {
	ids := make([]uuid.UUID, len(ratings))
	for i, r := range ratings {
		ids[i] = uuid.New()
		f.repo.Players[ids[i]] = matchdb.Player{ID: ids[i], GroupID: f.groupID, Name: "racer", EloRating: r}
	}
	return ids
}

func (f *fixture) addTracks(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	f.repo.TrackIDs = append(f.repo.TrackIDs, ids...)
	return ids
}

// seedMatch stores a match directly. teams[i] becomes team i+1 and
// lineups[r] lists the racers of round r+1.
func (f *fixture) seedMatch(teams [][]uuid.UUID, lineups [][]uuid.UUID) uuid.UUID {
	matchID := uuid.New()
	f.repo.Matches[matchID] = matchdb.Match{
		ID:           matchID,
		GroupID:      f.groupID,
		TournamentID: f.tournamentID,
		Time:         f.now,
		Rounds:       len(lineups),
	}

	teamOf := map[uuid.UUID]matchdb.Team{}
	for i, members := range teams {
		team := matchdb.Team{ID: uuid.New(), GroupID: f.groupID, MatchID: matchID, TeamNum: i + 1}
		f.repo.Teams = append(f.repo.Teams, team)
		for rank, id := range members {
			teamOf[id] = team
			f.repo.TeamPlayers = append(f.repo.TeamPlayers, matchdb.TeamPlayer{
				GroupID: f.groupID, TeamID: team.ID, PlayerID: id, Rank: rank + 1,
			})
			f.repo.MatchScores = append(f.repo.MatchScores, matchdb.PlayerMatchScore{
				MatchID: matchID, PlayerID: id, GroupID: f.groupID,
			})
		}
	}

	for r, racers := range lineups {
		f.repo.Rounds = append(f.repo.Rounds, matchdb.Round{MatchID: matchID, RoundNumber: r + 1})
		for _, id := range racers {
			f.repo.RoundPlayers = append(f.repo.RoundPlayers, matchdb.RoundPlayer{
				MatchID:        matchID,
				RoundNumber:    r + 1,
				PlayerID:       id,
				TeamID:         teamOf[id].ID,
				PlayerPosition: teamOf[id].TeamNum,
			})
		}
	}
	return matchID
}
