package tournament_test

import (
	"testing"
	"time"

	tournamentqueue "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/queue"
	"github.com/Black-And-White-Club/kart-bot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeJobs(jobs []tournamentqueue.JobInfo) []tournamentqueue.JobInfo {
	var out []tournamentqueue.JobInfo
	for _, j := range jobs {
		switch j.State {
		case "available", "scheduled", "retryable", "running":
			out = append(out, j)
		}
	}
	return out
}

func TestScheduleCompletionReplacesQueuedClose(t *testing.T) {
	s := setup(t)
	ctx := s.env.Ctx
	require.NoError(t, s.env.Reset(ctx))

	queue, err := tournamentqueue.NewService(ctx, s.env.DB, s.env.Logger, s.env.DSN, 1, metrics.NewNoop(), s.tournament)
	require.NoError(t, err)
	s.tournament.SetScheduler(queue)
	require.NoError(t, queue.HealthCheck(ctx))

	tournament, _ := s.openTournament(t, ctx)

	first, err := s.tournament.ScheduleCompletion(ctx, tournament.ID, "in 2 hours")
	require.NoError(t, err)
	require.True(t, first.IsSuccess(), "schedule failed: %v", first.Failure)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *first.Success, 2*time.Minute)

	jobs, err := queue.GetScheduledJobs(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, activeJobs(jobs), 1)
	assert.Equal(t, "scheduled", jobs[0].State)

	second, err := s.tournament.ScheduleCompletion(ctx, tournament.ID, "in 3 hours")
	require.NoError(t, err)
	require.True(t, second.IsSuccess())

	jobs, err = queue.GetScheduledJobs(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	active := activeJobs(jobs)
	require.Len(t, active, 1)
	scheduledAt, err := time.Parse(time.RFC3339, active[0].ScheduledAt)
	require.NoError(t, err)
	assert.WithinDuration(t, *second.Success, scheduledAt, time.Second)

	require.NoError(t, queue.CancelTournamentJobs(ctx, tournament.ID))
	jobs, err = queue.GetScheduledJobs(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, activeJobs(jobs))
}

func TestScheduledCloseRuns(t *testing.T) {
	s := setup(t)
	ctx := s.env.Ctx
	require.NoError(t, s.env.Reset(ctx))

	queue, err := tournamentqueue.NewService(ctx, s.env.DB, s.env.Logger, s.env.DSN, 1, metrics.NewNoop(), s.tournament)
	require.NoError(t, err)
	s.tournament.SetScheduler(queue)
	require.NoError(t, queue.Start(ctx))
	t.Cleanup(func() { _ = queue.Stop(ctx) })

	tournament, players := s.openTournament(t, ctx)
	s.playMatch(t, ctx, tournament.ID, players)

	require.NoError(t, queue.ScheduleCompletion(ctx, tournament.ID, time.Now().Add(6*time.Second)))

	require.Eventually(t, func() bool {
		got, err := s.tournament.GetTournament(ctx, tournament.ID)
		return err == nil && got.IsSuccess() && got.Success.WinnerID != nil
	}, 45*time.Second, 500*time.Millisecond, "scheduled close never ran")

	// Job completions are flushed in batches.
	require.Eventually(t, func() bool {
		jobs, err := queue.GetScheduledJobs(ctx, tournament.ID)
		return err == nil && len(jobs) == 1 && jobs[0].State == "completed"
	}, 10*time.Second, 200*time.Millisecond)
}

func TestScheduleRejectsPastTimes(t *testing.T) {
	s := setup(t)
	ctx := s.env.Ctx
	require.NoError(t, s.env.Reset(ctx))

	queue, err := tournamentqueue.NewService(ctx, s.env.DB, s.env.Logger, s.env.DSN, 1, metrics.NewNoop(), s.tournament)
	require.NoError(t, err)

	tournament, _ := s.openTournament(t, ctx)
	assert.Error(t, queue.ScheduleCompletion(ctx, tournament.ID, time.Now().Add(time.Second)))

	jobs, err := queue.GetScheduledJobs(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
