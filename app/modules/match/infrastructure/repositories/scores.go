package matchdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (r *Impl) InsertRaceScores(ctx context.Context, db bun.IDB, scores []PlayerRaceScore) error {
	db = r.resolveDB(db)
	if len(scores) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&scores).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.InsertRaceScores: %w", err)
	}
	return nil
}

func (r *Impl) GetRaceScoresForMatch(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]PlayerRaceScore, error) {
	db = r.resolveDB(db)
	var scores []PlayerRaceScore
	err := db.NewSelect().
		Model(&scores).
		Where("prs.match_id = ?", matchID).
		Order("prs.round_number ASC", "prs.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetRaceScoresForMatch: %w", err)
	}
	return scores, nil
}

func (r *Impl) InsertContributions(ctx context.Context, db bun.IDB, contributions []TeammateEloContribution) error {
	db = r.resolveDB(db)
	if len(contributions) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&contributions).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.InsertContributions: %w", err)
	}
	return nil
}

func (r *Impl) CreateMatchScores(ctx context.Context, db bun.IDB, scores []PlayerMatchScore) error {
	db = r.resolveDB(db)
	if len(scores) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&scores).Exec(ctx); err != nil {
		return fmt.Errorf("matchdb.CreateMatchScores: %w", err)
	}
	return nil
}

func (r *Impl) GetMatchScores(ctx context.Context, db bun.IDB, matchID uuid.UUID) ([]PlayerMatchScore, error) {
	db = r.resolveDB(db)
	var scores []PlayerMatchScore
	err := db.NewSelect().
		Model(&scores).
		Where("pms.match_id = ?", matchID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("matchdb.GetMatchScores: %w", err)
	}
	return scores, nil
}

func (r *Impl) UpsertMatchScores(ctx context.Context, db bun.IDB, scores []PlayerMatchScore) error {
	db = r.resolveDB(db)
	if len(scores) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&scores).
		On("CONFLICT (match_id, player_id) DO UPDATE").
		Set("position = EXCLUDED.position").
		Set("elo_change = EXCLUDED.elo_change").
		Set("tournament_elo_change = EXCLUDED.tournament_elo_change").
		Set("tournament_elo_from_races = EXCLUDED.tournament_elo_from_races").
		Set("tournament_elo_from_contributions = EXCLUDED.tournament_elo_from_contributions").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("matchdb.UpsertMatchScores: %w", err)
	}
	return nil
}
