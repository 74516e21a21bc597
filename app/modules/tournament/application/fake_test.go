package tournamentservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

type FakeTournamentRepo struct {
	trace []string

	Tournaments   map[uuid.UUID]tournamentdb.Tournament
	Standings     map[uuid.UUID][]tournamentdb.Standing
	Races         map[uuid.UUID][]tournamentdb.RaceRow
	Contributions map[uuid.UUID][]tournamentdb.ContributionRow
	MatchScores   map[uuid.UUID][]tournamentdb.MatchScoreRow
	Stats         []tournamentdb.TournamentStat

	SetWinnerFunc        func(ctx context.Context, db bun.IDB, id, winnerID uuid.UUID) error
	GetStandingsFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Standing, error)
	CreateTournamentFunc func(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error
}

func NewFakeTournamentRepo() *FakeTournamentRepo {
	return &FakeTournamentRepo{
		trace:         []string{},
		Tournaments:   map[uuid.UUID]tournamentdb.Tournament{},
		Standings:     map[uuid.UUID][]tournamentdb.Standing{},
		Races:         map[uuid.UUID][]tournamentdb.RaceRow{},
		Contributions: map[uuid.UUID][]tournamentdb.ContributionRow{},
		MatchScores:   map[uuid.UUID][]tournamentdb.MatchScoreRow{},
	}
}

func (f *FakeTournamentRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTournamentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTournamentRepo) CreateTournament(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament) error {
	f.record("CreateTournament")
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, db, t)
	}
	f.Tournaments[t.ID] = *t
	return nil
}

func (f *FakeTournamentRepo) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.record("GetTournament")
	return f.lookup(id)
}

func (f *FakeTournamentRepo) GetTournamentForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.record("GetTournamentForUpdate")
	return f.lookup(id)
}

func (f *FakeTournamentRepo) lookup(id uuid.UUID) (*tournamentdb.Tournament, error) {
	t, ok := f.Tournaments[id]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	return &t, nil
}

func (f *FakeTournamentRepo) SetWinner(ctx context.Context, db bun.IDB, id, winnerID uuid.UUID) error {
	f.record("SetWinner")
	if f.SetWinnerFunc != nil {
		return f.SetWinnerFunc(ctx, db, id, winnerID)
	}
	t, ok := f.Tournaments[id]
	if !ok || t.WinnerID != nil {
		return tournamentdb.ErrNoRowsAffected
	}
	t.WinnerID = &winnerID
	f.Tournaments[id] = t
	return nil
}

func (f *FakeTournamentRepo) GetStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.Standing, error) {
	f.record("GetStandings")
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, db, id)
	}
	return f.Standings[id], nil
}

func (f *FakeTournamentRepo) GetRaceHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.RaceRow, error) {
	f.record("GetRaceHistory")
	return f.Races[id], nil
}

func (f *FakeTournamentRepo) GetContributionHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.ContributionRow, error) {
	f.record("GetContributionHistory")
	return f.Contributions[id], nil
}

func (f *FakeTournamentRepo) GetMatchScoreHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.MatchScoreRow, error) {
	f.record("GetMatchScoreHistory")
	return f.MatchScores[id], nil
}

func (f *FakeTournamentRepo) InsertStats(ctx context.Context, db bun.IDB, stats []tournamentdb.TournamentStat) error {
	f.record("InsertStats")
	f.Stats = append(f.Stats, stats...)
	return nil
}

func (f *FakeTournamentRepo) GetStats(ctx context.Context, db bun.IDB, id uuid.UUID) ([]tournamentdb.TournamentStat, error) {
	f.record("GetStats")
	var out []tournamentdb.TournamentStat
	for _, s := range f.Stats {
		if s.TournamentID == id {
			out = append(out, s)
		}
	}
	return out, nil
}

var _ tournamentdb.Repository = (*FakeTournamentRepo)(nil)

// ------------------------
// Fake Publisher & Scheduler
// ------------------------

type FakePublisher struct {
	Published []events.TournamentCompletedPayload
	Err       error
}

func (p *FakePublisher) PublishTournamentCompleted(_ context.Context, payload events.TournamentCompletedPayload) error {
	p.Published = append(p.Published, payload)
	return p.Err
}

type scheduledClose struct {
	TournamentID uuid.UUID
	At           time.Time
}

type FakeScheduler struct {
	Scheduled []scheduledClose
	Err       error
}

func (s *FakeScheduler) ScheduleCompletion(_ context.Context, tournamentID uuid.UUID, at time.Time) error {
	if s.Err != nil {
		return s.Err
	}
	s.Scheduled = append(s.Scheduled, scheduledClose{TournamentID: tournamentID, At: at})
	return nil
}
