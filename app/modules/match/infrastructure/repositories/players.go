package matchdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetPlayersByIDs returns the players that exist among ids. Missing ids are
// simply absent from the result.
func (r *Impl) GetPlayersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var players []Player
	err := db.NewSelect().
		Model(&players).
		Where("p.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetPlayersByIDs: %w", err)
	}
	return players, nil
}

// GetPlayersForUpdate is GetPlayersByIDs with the rows locked until the
// transaction ends. Rows are locked in id order.
func (r *Impl) GetPlayersForUpdate(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]Player, error) {
	db = r.resolveDB(db)
	if len(ids) == 0 {
		return nil, nil
	}
	var players []Player
	err := db.NewSelect().
		Model(&players).
		Where("p.id IN (?)", bun.In(ids)).
		Order("p.id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetPlayersForUpdate: %w", err)
	}
	return players, nil
}

func (r *Impl) CreatePlayer(ctx context.Context, db bun.IDB, player *Player) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(player).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreatePlayer: %w", err)
	}
	return nil
}

func (r *Impl) UpdatePlayerRatings(ctx context.Context, db bun.IDB, updates []RatingUpdate) error {
	db = r.resolveDB(db)
	for _, u := range updates {
		_, err := db.NewUpdate().
			Model((*Player)(nil)).
			Set("elo_rating = ?", u.Rating).
			Where("id = ?", u.PlayerID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("matchdb.UpdatePlayerRatings: player %s: %w", u.PlayerID, err)
		}
	}
	return nil
}

// ListTrackIDs returns the whole catalog ordered by name.
func (r *Impl) ListTrackIDs(ctx context.Context, db bun.IDB) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*Track)(nil)).
		Column("tr.id").
		Order("tr.name ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("matchdb.ListTrackIDs: %w", err)
	}
	return ids, nil
}

func (r *Impl) CountPlayedTrackRounds(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Round)(nil)).
		Join("JOIN matches AS m ON m.id = r.match_id").
		Where("m.tournament_id = ?", tournamentID).
		Where("r.track_id IS NOT NULL").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("matchdb.CountPlayedTrackRounds: %w", err)
	}
	return count, nil
}

func (r *Impl) ListRecentTrackIDs(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, limit int) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	if limit <= 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*Round)(nil)).
		Column("r.track_id").
		Join("JOIN matches AS m ON m.id = r.match_id").
		Where("m.tournament_id = ?", tournamentID).
		Where("r.track_id IS NOT NULL").
		OrderExpr("m.time DESC, r.round_number DESC").
		Limit(limit).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("matchdb.ListRecentTrackIDs: %w", err)
	}
	return ids, nil
}

func (r *Impl) GetOrCreateTournamentScores(ctx context.Context, db bun.IDB, tournamentID, groupID uuid.UUID, playerIDs []uuid.UUID, startRating int) (map[uuid.UUID]int, error) {
	db = r.resolveDB(db)
	if len(playerIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}

	rows := make([]PlayerTournamentScore, len(playerIDs))
	for i, id := range playerIDs {
		rows[i] = PlayerTournamentScore{
			PlayerID:     id,
			TournamentID: tournamentID,
			GroupID:      groupID,
			EloRating:    startRating,
		}
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (player_id, tournament_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetOrCreateTournamentScores: insert: %w", err)
	}

	var existing []PlayerTournamentScore
	err = db.NewSelect().
		Model(&existing).
		Where("pts.tournament_id = ?", tournamentID).
		Where("pts.player_id IN (?)", bun.In(playerIDs)).
		Order("pts.player_id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetOrCreateTournamentScores: select: %w", err)
	}

	out := make(map[uuid.UUID]int, len(existing))
	for _, s := range existing {
		out[s.PlayerID] = s.EloRating
	}
	return out, nil
}

func (r *Impl) UpdateTournamentScores(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, updates []RatingUpdate) error {
	db = r.resolveDB(db)
	for _, u := range updates {
		_, err := db.NewUpdate().
			Model((*PlayerTournamentScore)(nil)).
			Set("elo_rating = ?", u.Rating).
			Set("updated_at = current_timestamp").
			Where("player_id = ?", u.PlayerID).
			Where("tournament_id = ?", tournamentID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("matchdb.UpdateTournamentScores: player %s: %w", u.PlayerID, err)
		}
	}
	return nil
}

func (r *Impl) GetTournamentRef(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*TournamentRef, error) {
	db = r.resolveDB(db)
	ref := new(TournamentRef)
	err := db.NewSelect().
		Model(ref).
		Where("tn.id = ?", tournamentID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("matchdb.GetTournamentRef: %w", err)
	}
	return ref, nil
}
