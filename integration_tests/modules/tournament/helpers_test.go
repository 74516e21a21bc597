package tournament_test

import (
	"context"
	"testing"
	"time"

	"github.com/Black-And-White-Club/kart-bot/app/eventbus"
	matchservice "github.com/Black-And-White-Club/kart-bot/app/modules/match/application"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	tournamentservice "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/application"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/kart-bot/integration_tests/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type services struct {
	env        *testutils.TestEnvironment
	matches    *matchservice.MatchService
	tournament *tournamentservice.TournamentService
	gen        *testutils.TestDataGenerator
}

func setup(t *testing.T) *services {
	t.Helper()
	env := testutils.NewTestEnvironment(t)

	bus, err := eventbus.NewNATSBus(env.Ctx, env.NatsURL, env.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	publisher := eventbus.NewPublisher(bus.Publisher(), env.Logger)

	tracer := noop.NewTracerProvider().Tracer("test")
	return &services{
		env: env,
		matches: matchservice.NewMatchService(matchdb.NewRepository(env.DB), env.Logger, nil, tracer, env.DB,
			matchservice.WithPublisher(publisher)),
		tournament: tournamentservice.NewTournamentService(tournamentdb.NewRepository(env.DB), env.Logger, nil, tracer, env.DB,
			tournamentservice.WithPublisher(publisher)),
		gen: testutils.NewTestDataGenerator(42),
	}
}

// openTournament creates a group with four players and a tournament for it.
func (s *services) openTournament(t *testing.T, ctx context.Context) (tournamentdb.Tournament, []matchdb.Player) {
	t.Helper()
	groupID := uuid.New()
	players := s.gen.GeneratePlayers(groupID, 4)
	require.NoError(t, testutils.InsertPlayers(ctx, s.env.DB, players))

	res, err := s.tournament.CreateTournament(ctx, tournamentservice.CreateTournamentRequest{
		GroupID:   groupID,
		Name:      s.gen.TournamentName(),
		StartDate: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), "create tournament failed: %v", res.Failure)
	return *res.Success, players
}

// playMatch creates a two team match and scores every round in lineup order.
func (s *services) playMatch(t *testing.T, ctx context.Context, tournamentID uuid.UUID, players []matchdb.Player) matchservice.RoundOutcome {
	t.Helper()
	created, err := s.matches.CreateMatch(ctx, matchservice.CreateMatchRequest{
		TournamentID: tournamentID,
		PlayerIDs:    testutils.PlayerIDs(players),
		Rounds:       2,
		TeamsPerRace: 2,
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess(), "create match failed: %v", created.Failure)

	details := created.Success
	require.Len(t, details.Teams, 2)
	require.Len(t, details.Rounds, 2)

	var last matchservice.RoundOutcome
	for _, round := range details.Rounds {
		submitted := make([]matchservice.PlayerResult, len(round.Lineup))
		for i, slot := range round.Lineup {
			submitted[i] = matchservice.PlayerResult{PlayerID: slot.PlayerID, Position: i + 1}
		}
		res, err := s.matches.RecordRoundResults(ctx, details.Match.ID, round.RoundNumber, submitted)
		require.NoError(t, err)
		require.True(t, res.IsSuccess(), "round %d failed: %v", round.RoundNumber, res.Failure)
		last = *res.Success
	}
	return last
}
