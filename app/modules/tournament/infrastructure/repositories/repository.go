package tournamentdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateTournament(ctx context.Context, db bun.IDB, t *Tournament) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
		return fmt.Errorf("tournamentdb.CreateTournament: %w", err)
	}
	return nil
}

func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error) {
	return r.getTournament(ctx, r.resolveDB(db), id, false)
}

func (r *Impl) GetTournamentForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error) {
	return r.getTournament(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) getTournament(ctx context.Context, db bun.IDB, id uuid.UUID, lock bool) (*Tournament, error) {
	t := new(Tournament)
	q := db.NewSelect().Model(t).Where("tn.id = ?", id)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tournamentdb.GetTournament: %w", err)
	}
	return t, nil
}

func (r *Impl) SetWinner(ctx context.Context, db bun.IDB, id, winnerID uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Tournament)(nil)).
		Set("winner_id = ?", winnerID).
		Set("updated_at = current_timestamp").
		Where("id = ?", id).
		Where("winner_id IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tournamentdb.SetWinner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tournamentdb.SetWinner: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) GetStandings(ctx context.Context, db bun.IDB, id uuid.UUID) ([]Standing, error) {
	db = r.resolveDB(db)
	var rows []Standing
	err := db.NewSelect().
		TableExpr("player_tournament_scores AS pts").
		ColumnExpr("pts.player_id, p.name, pts.elo_rating, p.elo_rating AS all_time_rating, pts.created_at").
		Join("JOIN players AS p ON p.id = pts.player_id").
		Where("pts.tournament_id = ?", id).
		OrderExpr("pts.elo_rating DESC, pts.created_at ASC, pts.player_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetStandings: %w", err)
	}
	return rows, nil
}

func (r *Impl) GetRaceHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]RaceRow, error) {
	db = r.resolveDB(db)
	var rows []RaceRow
	err := db.NewSelect().
		TableExpr("player_race_scores AS prs").
		ColumnExpr("prs.match_id, m.time AS match_time, prs.round_number, prs.player_id").
		ColumnExpr("prs.tournament_elo_change, prs.tournament_elo_after").
		Join("JOIN matches AS m ON m.id = prs.match_id").
		Where("m.tournament_id = ?", id).
		OrderExpr("m.time ASC, prs.match_id ASC, prs.round_number ASC, prs.position ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetRaceHistory: %w", err)
	}
	return rows, nil
}

func (r *Impl) GetContributionHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]ContributionRow, error) {
	db = r.resolveDB(db)
	var rows []ContributionRow
	err := db.NewSelect().
		TableExpr("teammate_elo_contributions AS tec").
		ColumnExpr("tec.source_player_id, tec.beneficiary_player_id, tec.contribution_amount").
		Join("JOIN matches AS m ON m.id = tec.match_id").
		Where("m.tournament_id = ?", id).
		OrderExpr("m.time ASC, tec.match_id ASC, tec.round_number ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetContributionHistory: %w", err)
	}
	return rows, nil
}

func (r *Impl) GetMatchScoreHistory(ctx context.Context, db bun.IDB, id uuid.UUID) ([]MatchScoreRow, error) {
	db = r.resolveDB(db)
	var rows []MatchScoreRow
	err := db.NewSelect().
		TableExpr("player_match_scores AS pms").
		ColumnExpr("pms.match_id, pms.player_id, pms.tournament_elo_change").
		Join("JOIN matches AS m ON m.id = pms.match_id").
		Where("m.tournament_id = ?", id).
		Where("m.completed").
		OrderExpr("m.time ASC, pms.match_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetMatchScoreHistory: %w", err)
	}
	return rows, nil
}

func (r *Impl) InsertStats(ctx context.Context, db bun.IDB, stats []TournamentStat) error {
	db = r.resolveDB(db)
	if len(stats) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&stats).Exec(ctx); err != nil {
		return fmt.Errorf("tournamentdb.InsertStats: %w", err)
	}
	return nil
}

func (r *Impl) GetStats(ctx context.Context, db bun.IDB, id uuid.UUID) ([]TournamentStat, error) {
	db = r.resolveDB(db)
	var stats []TournamentStat
	err := db.NewSelect().
		Model(&stats).
		Where("ts.tournament_id = ?", id).
		Order("ts.created_at ASC").
		Order("ts.stat_type ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetStats: %w", err)
	}
	return stats, nil
}

var _ Repository = (*Impl)(nil)
