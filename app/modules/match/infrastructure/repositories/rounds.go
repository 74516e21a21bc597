package matchdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (r *Impl) CreateRounds(ctx context.Context, db bun.IDB, rounds []Round) error {
	db = r.resolveDB(db)
	if len(rounds) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rounds).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateRounds: %w", err)
	}
	return nil
}

func (r *Impl) CreateRoundPlayers(ctx context.Context, db bun.IDB, players []RoundPlayer) error {
	db = r.resolveDB(db)
	if len(players) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&players).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateRoundPlayers: %w", err)
	}
	return nil
}

func (r *Impl) GetRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]Round, error) {
	db = r.resolveDB(db)
	var rounds []Round
	err := db.NewSelect().
		Model(&rounds).
		Where("r.match_id = ?", matchID).
		Order("r.round_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetRounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) GetRoundForUpdate(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Where("r.match_id = ?", matchID).
		Where("r.round_number = ?", roundNumber).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("matchdb.GetRoundForUpdate: %w", err)
	}
	return round, nil
}

func (r *Impl) GetRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) ([]RoundPlayer, error) {
	db = r.resolveDB(db)
	var players []RoundPlayer
	err := db.NewSelect().
		Model(&players).
		Where("rp.match_id = ?", matchID).
		Where("rp.round_number = ?", roundNumber).
		Order("rp.player_position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetRoundPlayers: %w", err)
	}
	return players, nil
}

// ReplaceRoundPlayer removes outPlayerID from the round identified by in and
// inserts in at the same time.
func (r *Impl) ReplaceRoundPlayer(ctx context.Context, db bun.IDB, outPlayerID uuid.UUID, in RoundPlayer) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*RoundPlayer)(nil)).
		Where("match_id = ?", in.MatchID).
		Where("round_number = ?", in.RoundNumber).
		Where("player_id = ?", outPlayerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("matchdb.ReplaceRoundPlayer: delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRowsAffected
	}
	if _, err := db.NewInsert().Model(&in).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.ReplaceRoundPlayer: insert: %w", err)
	}
	return nil
}

func (r *Impl) MarkRoundCompleted(ctx context.Context, db bun.IDB, matchID uuid.UUID, roundNumber int) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Round)(nil)).
		Set("completed = ?", true).
		Where("match_id = ?", matchID).
		Where("round_number = ?", roundNumber).
		Where("completed = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("matchdb.MarkRoundCompleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("matchdb.MarkRoundCompleted: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) CountIncompleteRounds(ctx context.Context, db bun.IDB, matchID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Round)(nil)).
		Where("r.match_id = ?", matchID).
		Where("r.completed = ?", false).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("matchdb.CountIncompleteRounds: %w", err)
	}
	return count, nil
}

func (r *Impl) GetMatchRoundPlayers(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]RoundPlayer, error) {
	db = r.resolveDB(db)
	var players []RoundPlayer
	err := db.NewSelect().
		Model(&players).
		Where("rp.match_id = ?", matchID).
		Order("rp.round_number ASC", "rp.player_position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetMatchRoundPlayers: %w", err)
	}
	return players, nil
}
