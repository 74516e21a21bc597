package matchservice

import (
	"cmp"
	"context"
	"slices"

	"github.com/Black-And-White-Club/kart-bot/app/events"
	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Match Repo
// ------------------------

// FakeMatchRepo is an in-memory matchdb.Repository. Every method records its
// name in the trace; the Func fields override the in-memory behaviour.
type FakeMatchRepo struct {
	trace []string

	Players          map[uuid.UUID]matchdb.Player
	TrackIDs         []uuid.UUID
	Tournaments      map[uuid.UUID]matchdb.TournamentRef
	TournamentScores map[uuid.UUID]map[uuid.UUID]int
	Matches          map[uuid.UUID]matchdb.Match
	Teams            []matchdb.Team
	TeamPlayers      []matchdb.TeamPlayer
	Rounds           []matchdb.Round
	RoundPlayers     []matchdb.RoundPlayer
	RaceScores       []matchdb.PlayerRaceScore
	Contributions    []matchdb.TeammateEloContribution
	MatchScores      []matchdb.PlayerMatchScore
	TeamScores       []matchdb.TeamMatchScore

	GetPlayersByIDsFunc    func(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]matchdb.Player, error)
	GetMatchForUpdateFunc  func(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*matchdb.Match, error)
	GetRoundForUpdateFunc  func(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) (*matchdb.Round, error)
	MarkRoundCompletedFunc func(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) error
	InsertRaceScoresFunc   func(ctx context.Context, db bun.IDB, scores []matchdb.PlayerRaceScore) error
	CreateMatchFunc        func(ctx context.Context, db bun.IDB, match *matchdb.Match) error
	CreatePlayerFunc       func(ctx context.Context, db bun.IDB, player *matchdb.Player) error
}

func NewFakeMatchRepo() *FakeMatchRepo {
	return &FakeMatchRepo{
		trace:            []string{},
		Players:          map[uuid.UUID]matchdb.Player{},
		Tournaments:      map[uuid.UUID]matchdb.TournamentRef{},
		TournamentScores: map[uuid.UUID]map[uuid.UUID]int{},
		Matches:          map[uuid.UUID]matchdb.Match{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeMatchRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeMatchRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Players & tracks ---

func (f *FakeMatchRepo) GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]matchdb.Player, error) {
	f.record("GetPlayersByIDs")
	if f.GetPlayersByIDsFunc != nil {
		return f.GetPlayersByIDsFunc(ctx, db, ids)
	}
	var out []matchdb.Player
	for _, id := range ids {
		if p, ok := f.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) GetPlayersForUpdate(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]matchdb.Player, error) {
	f.record("GetPlayersForUpdate")
	var out []matchdb.Player
	for _, id := range ids {
		if p, ok := f.Players[id]; ok {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b matchdb.Player) int { return cmp.Compare(a.ID.String(), b.ID.String()) })
	return out, nil
}

func (f *FakeMatchRepo) CreatePlayer(ctx context.Context, db bun.IDB, player *matchdb.Player) error {
	f.record("CreatePlayer")
	if f.CreatePlayerFunc != nil {
		return f.CreatePlayerFunc(ctx, db, player)
	}
	f.Players[player.ID] = *player
	return nil
}

func (f *FakeMatchRepo) UpdatePlayerRatings(ctx context.Context, db bun.IDB, updates []matchdb.RatingUpdate) error {
	f.record("UpdatePlayerRatings")
	for _, u := range updates {
		p := f.Players[u.PlayerID]
		p.EloRating = u.Rating
		f.Players[u.PlayerID] = p
	}
	return nil
}

func (f *FakeMatchRepo) ListTrackIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error) {
	f.record("ListTrackIDs")
	return slices.Clone(f.TrackIDs), nil
}

func (f *FakeMatchRepo) playedRounds(tournamentID uuid.UUID) []matchdb.Round {
	var played []matchdb.Round
	for _, r := range f.Rounds {
		if r.TrackID != nil && f.Matches[r.MatchID].TournamentID == tournamentID {
			played = append(played, r)
		}
	}
	slices.SortStableFunc(played, func(a, b matchdb.Round) int {
		if c := f.Matches[b.MatchID].Time.Compare(f.Matches[a.MatchID].Time); c != 0 {
			return c
		}
		return cmp.Compare(b.RoundNumber, a.RoundNumber)
	})
	return played
}

func (f *FakeMatchRepo) CountPlayedTrackRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error) {
	f.record("CountPlayedTrackRounds")
	return len(f.playedRounds(tournamentID)), nil
}

func (f *FakeMatchRepo) ListRecentTrackIDs(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.record("ListRecentTrackIDs")
	var ids []uuid.UUID
	for _, r := range f.playedRounds(tournamentID) {
		if len(ids) == limit {
			break
		}
		ids = append(ids, *r.TrackID)
	}
	return ids, nil
}

// --- Tournament ladder ---

func (f *FakeMatchRepo) GetTournamentRef(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*matchdb.TournamentRef, error) {
	f.record("GetTournamentRef")
	t, ok := f.Tournaments[tournamentID]
	if !ok {
		return nil, matchdb.ErrNotFound
	}
	return &t, nil
}

func (f *FakeMatchRepo) GetOrCreateTournamentScores(ctx context.Context, db bun.IDB, tournamentID, groupID uuid.UUID, playerIDs []uuid.UUID, startRating int) (map[uuid.UUID]int, error) {
	f.record("GetOrCreateTournamentScores")
	ladder, ok := f.TournamentScores[tournamentID]
	if !ok {
		ladder = map[uuid.UUID]int{}
		f.TournamentScores[tournamentID] = ladder
	}
	out := make(map[uuid.UUID]int, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := ladder[id]; !ok {
			ladder[id] = startRating
		}
		out[id] = ladder[id]
	}
	return out, nil
}

func (f *FakeMatchRepo) UpdateTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, updates []matchdb.RatingUpdate) error {
	f.record("UpdateTournamentScores")
	for _, u := range updates {
		f.TournamentScores[tournamentID][u.PlayerID] = u.Rating
	}
	return nil
}

// --- Matches & teams ---

func (f *FakeMatchRepo) CreateMatch(ctx context.Context, db bun.IDB, match *matchdb.Match) error {
	f.record("CreateMatch")
	if f.CreateMatchFunc != nil {
		return f.CreateMatchFunc(ctx, db, match)
	}
	f.Matches[match.ID] = *match
	return nil
}

func (f *FakeMatchRepo) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*matchdb.Match, error) {
	f.record("GetMatch")
	m, ok := f.Matches[matchID]
	if !ok {
		return nil, matchdb.ErrNotFound
	}
	return &m, nil
}

func (f *FakeMatchRepo) GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*matchdb.Match, error) {
	f.record("GetMatchForUpdate")
	if f.GetMatchForUpdateFunc != nil {
		return f.GetMatchForUpdateFunc(ctx, db, matchID)
	}
	m, ok := f.Matches[matchID]
	if !ok {
		return nil, matchdb.ErrNotFound
	}
	return &m, nil
}

func (f *FakeMatchRepo) MarkMatchCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID) error {
	f.record("MarkMatchCompleted")
	m, ok := f.Matches[matchID]
	if !ok || m.Completed {
		return matchdb.ErrNoRowsAffected
	}
	m.Completed = true
	f.Matches[matchID] = m
	return nil
}

func (f *FakeMatchRepo) CreateTeams(ctx context.Context, db bun.IDB, teams []matchdb.Team) error {
	f.record("CreateTeams")
	f.Teams = append(f.Teams, teams...)
	return nil
}

func (f *FakeMatchRepo) CreateTeamPlayers(ctx context.Context, db bun.IDB, members []matchdb.TeamPlayer) error {
	f.record("CreateTeamPlayers")
	f.TeamPlayers = append(f.TeamPlayers, members...)
	return nil
}

func (f *FakeMatchRepo) GetTeams(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.Team, error) {
	f.record("GetTeams")
	var out []matchdb.Team
	for _, t := range f.Teams {
		if t.MatchID == matchID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b matchdb.Team) int { return cmp.Compare(a.TeamNum, b.TeamNum) })
	return out, nil
}

func (f *FakeMatchRepo) GetTeamRoster(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.TeamMember, error) {
	f.record("GetTeamRoster")
	teamNums := map[uuid.UUID]int{}
	for _, t := range f.Teams {
		if t.MatchID == matchID {
			teamNums[t.ID] = t.TeamNum
		}
	}
	var out []matchdb.TeamMember
	for _, tp := range f.TeamPlayers {
		if num, ok := teamNums[tp.TeamID]; ok {
			out = append(out, matchdb.TeamMember{TeamID: tp.TeamID, TeamNum: num, PlayerID: tp.PlayerID, Rank: tp.Rank})
		}
	}
	slices.SortFunc(out, func(a, b matchdb.TeamMember) int {
		if c := cmp.Compare(a.TeamNum, b.TeamNum); c != 0 {
			return c
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return out, nil
}

func (f *FakeMatchRepo) SaveTeamScores(ctx context.Context, db bun.IDB, scores []matchdb.TeamMatchScore) error {
	f.record("SaveTeamScores")
	f.TeamScores = append(f.TeamScores, scores...)
	for _, s := range scores {
		for i := range f.Teams {
			if f.Teams[i].ID == s.TeamID {
				rounded := int(s.Score + 0.5)
				f.Teams[i].Score = &rounded
			}
		}
	}
	return nil
}

// --- Rounds ---

func (f *FakeMatchRepo) CreateRounds(ctx context.Context, db bun.IDB, rounds []matchdb.Round) error {
	f.record("CreateRounds")
	f.Rounds = append(f.Rounds, rounds...)
	return nil
}

func (f *FakeMatchRepo) CreateRoundPlayers(ctx context.Context, db bun.IDB, players []matchdb.RoundPlayer) error {
	f.record("CreateRoundPlayers")
	f.RoundPlayers = append(f.RoundPlayers, players...)
	return nil
}

func (f *FakeMatchRepo) GetRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.Round, error) {
	f.record("GetRounds")
	var out []matchdb.Round
	for _, r := range f.Rounds {
		if r.MatchID == matchID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b matchdb.Round) int { return cmp.Compare(a.RoundNumber, b.RoundNumber) })
	return out, nil
}

func (f *FakeMatchRepo) GetRoundForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) (*matchdb.Round, error) {
	f.record("GetRoundForUpdate")
	if f.GetRoundForUpdateFunc != nil {
		return f.GetRoundForUpdateFunc(ctx, db, matchID, roundNumber)
	}
	for _, r := range f.Rounds {
		if r.MatchID == matchID && r.RoundNumber == roundNumber {
			return &r, nil
		}
	}
	return nil, matchdb.ErrNotFound
}

func (f *FakeMatchRepo) GetRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) ([]matchdb.RoundPlayer, error) {
	f.record("GetRoundPlayers")
	var out []matchdb.RoundPlayer
	for _, rp := range f.RoundPlayers {
		if rp.MatchID == matchID && rp.RoundNumber == roundNumber {
			out = append(out, rp)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) GetMatchRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.RoundPlayer, error) {
	f.record("GetMatchRoundPlayers")
	var out []matchdb.RoundPlayer
	for _, rp := range f.RoundPlayers {
		if rp.MatchID == matchID {
			out = append(out, rp)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) ReplaceRoundPlayer(ctx context.Context, db bun.IDB, outPlayerID uuid.UUID, in matchdb.RoundPlayer) error {
	f.record("ReplaceRoundPlayer")
	for i, rp := range f.RoundPlayers {
		if rp.MatchID == in.MatchID && rp.RoundNumber == in.RoundNumber && rp.PlayerID == outPlayerID {
			f.RoundPlayers[i] = in
			return nil
		}
	}
	return matchdb.ErrNoRowsAffected
}

func (f *FakeMatchRepo) MarkRoundCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) error {
	f.record("MarkRoundCompleted")
	if f.MarkRoundCompletedFunc != nil {
		return f.MarkRoundCompletedFunc(ctx, db, matchID, roundNumber)
	}
	for i, r := range f.Rounds {
		if r.MatchID == matchID && r.RoundNumber == roundNumber && !r.Completed {
			f.Rounds[i].Completed = true
			return nil
		}
	}
	return matchdb.ErrNoRowsAffected
}

func (f *FakeMatchRepo) CountIncompleteRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error) {
	f.record("CountIncompleteRounds")
	n := 0
	for _, r := range f.Rounds {
		if r.MatchID == matchID && !r.Completed {
			n++
		}
	}
	return n, nil
}

// --- Scores ---

func (f *FakeMatchRepo) InsertRaceScores(ctx context.Context, db bun.IDB, scores []matchdb.PlayerRaceScore) error {
	f.record("InsertRaceScores")
	if f.InsertRaceScoresFunc != nil {
		return f.InsertRaceScoresFunc(ctx, db, scores)
	}
	f.RaceScores = append(f.RaceScores, scores...)
	return nil
}

func (f *FakeMatchRepo) GetRaceScoresForMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.PlayerRaceScore, error) {
	f.record("GetRaceScoresForMatch")
	var out []matchdb.PlayerRaceScore
	for _, s := range f.RaceScores {
		if s.MatchID == matchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) InsertContributions(ctx context.Context, db bun.IDB, contributions []matchdb.TeammateEloContribution) error {
	f.record("InsertContributions")
	f.Contributions = append(f.Contributions, contributions...)
	return nil
}

func (f *FakeMatchRepo) CreateMatchScores(ctx context.Context, db bun.IDB, scores []matchdb.PlayerMatchScore) error {
	f.record("CreateMatchScores")
	f.MatchScores = append(f.MatchScores, scores...)
	return nil
}

func (f *FakeMatchRepo) GetMatchScores(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]matchdb.PlayerMatchScore, error) {
	f.record("GetMatchScores")
	var out []matchdb.PlayerMatchScore
	for _, s := range f.MatchScores {
		if s.MatchID == matchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeMatchRepo) UpsertMatchScores(ctx context.Context, db bun.IDB, scores []matchdb.PlayerMatchScore) error {
	f.record("UpsertMatchScores")
	for _, s := range scores {
		idx := slices.IndexFunc(f.MatchScores, func(x matchdb.PlayerMatchScore) bool {
			return x.MatchID == s.MatchID && x.PlayerID == s.PlayerID
		})
		if idx < 0 {
			f.MatchScores = append(f.MatchScores, s)
			continue
		}
		f.MatchScores[idx] = s
	}
	return nil
}

// MatchScore returns the stored aggregate of one player, or the zero value.
func (f *FakeMatchRepo) MatchScore(matchID, playerID uuid.UUID) matchdb.PlayerMatchScore {
	for _, s := range f.MatchScores {
		if s.MatchID == matchID && s.PlayerID == playerID {
			return s
		}
	}
	return matchdb.PlayerMatchScore{}
}

var _ matchdb.Repository = (*FakeMatchRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	Published []events.MatchUpdatedPayload
	Err       error
}

func (p *FakePublisher) PublishMatchUpdated(ctx context.Context, payload events.MatchUpdatedPayload) error {
	p.Published = append(p.Published, payload)
	return p.Err
}

var _ EventPublisher = (*FakePublisher)(nil)
