package matchdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (r *Impl) CreateMatch(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(match).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateMatch: %w", err)
	}
	return nil
}

func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error) {
	return r.getMatch(ctx, r.resolveDB(db), matchID, false)
}

func (r *Impl) GetMatchForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID) (*Match, error) {
	return r.getMatch(ctx, r.resolveDB(db), matchID, true)
}

func (r *Impl) getMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID, lock bool) (*Match, error) {
	match := new(Match)
	q := db.NewSelect().Model(match).Where("m.id = ?", matchID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("matchdb.GetMatch: %w", err)
	}
	return match, nil
}

func (r *Impl) MarkMatchCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Match)(nil)).
		Set("completed = ?", true).
		Where("id = ?", matchID).
		Where("completed = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("matchdb.MarkMatchCompleted: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) CreateTeams(ctx context.Context, db bun.IDB, teams []Team) error {
	db = r.resolveDB(db)
	if len(teams) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&teams).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateTeams: %w", err)
	}
	return nil
}

func (r *Impl) CreateTeamPlayers(ctx context.Context, db bun.IDB, members []TeamPlayer) error {
	db = r.resolveDB(db)
	if len(members) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&members).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateTeamPlayers: %w", err)
	}
	return nil
}

func (r *Impl) GetTeamRoster(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]TeamMember, error) {
	db = r.resolveDB(db)
	var members []TeamMember
	err := db.NewSelect().
		TableExpr("team_players AS tp").
		ColumnExpr("tp.team_id, t.team_num, tp.player_id, tp.rank").
		Join("JOIN teams AS t ON t.id = tp.team_id").
		Where("t.match_id = ?", matchID).
		OrderExpr("t.team_num ASC, tp.rank ASC").
		Scan(ctx, &members)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetTeamRoster: %w", err)
	}
	return members, nil
}

// SaveTeamScores stores the exact average in team_match_scores and the
// rounded value on the team itself.
func (r *Impl) SaveTeamScores(ctx context.Context, db bun.IDB, scores []TeamMatchScore) error {
	db = r.resolveDB(db)
	if len(scores) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&scores).
		On("CONFLICT (match_id, team_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("matchdb.SaveTeamScores: %w", err)
	}

	for _, s := range scores {
		_, err := db.NewUpdate().
			Model((*Team)(nil)).
			Set("score = ?", int(math.Round(s.Score))).
			Where("id = ?", s.TeamID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("matchdb.SaveTeamScores: team %s: %w", s.TeamID, err)
		}
	}
	return nil
}

func (r *Impl) GetTeams(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Team, error) {
	db = r.resolveDB(db)
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Where("t.match_id = ?", matchID).
		Order("t.team_num ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetTeams: %w", err)
	}
	return teams, nil
}
