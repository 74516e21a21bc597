package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament tables...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS tournaments (
				id UUID PRIMARY KEY,
				group_id UUID NOT NULL,
				name VARCHAR(200) NOT NULL,
				start_date TIMESTAMPTZ NOT NULL,
				end_date TIMESTAMPTZ,
				winner_id UUID,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_tournaments_group_id ON tournaments(group_id);

			CREATE TABLE IF NOT EXISTS tournament_stats (
				id UUID PRIMARY KEY,
				tournament_id UUID NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
				stat_type TEXT NOT NULL,
				player_id UUID NOT NULL,
				value INTEGER NOT NULL,
				extra_data JSONB,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (tournament_id, stat_type, player_id)
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create tournament tables: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS tournament_stats;
			DROP TABLE IF EXISTS tournaments;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop tournament tables: %w", err)
		}
		return nil
	})
}
