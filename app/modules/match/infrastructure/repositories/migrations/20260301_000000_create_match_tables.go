package matchmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating player, track and match tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS players (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					group_id UUID NOT NULL,
					name VARCHAR(100) NOT NULL,
					elo_rating INTEGER NOT NULL DEFAULT 1200,
					avatar_filename TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_players_group_id ON players(group_id);

				CREATE TABLE IF NOT EXISTS tracks (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(100) NOT NULL UNIQUE
				);

				CREATE TABLE IF NOT EXISTS matches (
					id UUID PRIMARY KEY,
					group_id UUID NOT NULL,
					tournament_id UUID NOT NULL REFERENCES tournaments(id),
					time TIMESTAMPTZ NOT NULL,
					rounds INTEGER NOT NULL CHECK (rounds > 0),
					completed BOOLEAN NOT NULL DEFAULT FALSE
				);
				CREATE INDEX IF NOT EXISTS idx_matches_tournament_time ON matches(tournament_id, time DESC);

				CREATE TABLE IF NOT EXISTS teams (
					id UUID PRIMARY KEY,
					group_id UUID NOT NULL,
					match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					team_num INTEGER NOT NULL,
					score INTEGER,
					UNIQUE (match_id, team_num)
				);

				CREATE TABLE IF NOT EXISTS team_players (
					group_id UUID NOT NULL,
					team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					player_id UUID NOT NULL REFERENCES players(id),
					rank INTEGER NOT NULL,
					PRIMARY KEY (team_id, player_id)
				);

				CREATE TABLE IF NOT EXISTS rounds (
					match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					round_number INTEGER NOT NULL,
					track_id UUID REFERENCES tracks(id),
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					PRIMARY KEY (match_id, round_number)
				);

				CREATE TABLE IF NOT EXISTS round_players (
					match_id UUID NOT NULL,
					round_number INTEGER NOT NULL,
					player_id UUID NOT NULL REFERENCES players(id),
					team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					player_position INTEGER NOT NULL,
					PRIMARY KEY (match_id, round_number, player_id),
					FOREIGN KEY (match_id, round_number) REFERENCES rounds(match_id, round_number) ON DELETE CASCADE
				);
			`); err != nil {
				return fmt.Errorf("failed to create match tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS player_race_scores (
					match_id UUID NOT NULL,
					round_number INTEGER NOT NULL,
					player_id UUID NOT NULL REFERENCES players(id),
					group_id UUID NOT NULL,
					position INTEGER NOT NULL CHECK (position BETWEEN 1 AND 24),
					all_time_elo_change INTEGER NOT NULL,
					all_time_elo_after INTEGER NOT NULL,
					tournament_elo_change INTEGER NOT NULL,
					tournament_elo_after INTEGER NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (match_id, round_number, player_id),
					FOREIGN KEY (match_id, round_number) REFERENCES rounds(match_id, round_number) ON DELETE CASCADE
				);

				CREATE TABLE IF NOT EXISTS player_match_scores (
					match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					player_id UUID NOT NULL REFERENCES players(id),
					group_id UUID NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					elo_change INTEGER NOT NULL DEFAULT 0,
					tournament_elo_change INTEGER NOT NULL DEFAULT 0,
					tournament_elo_from_races INTEGER NOT NULL DEFAULT 0,
					tournament_elo_from_contributions INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (match_id, player_id)
				);

				CREATE TABLE IF NOT EXISTS teammate_elo_contributions (
					match_id UUID NOT NULL,
					round_number INTEGER NOT NULL,
					source_player_id UUID NOT NULL REFERENCES players(id),
					beneficiary_player_id UUID NOT NULL REFERENCES players(id),
					group_id UUID NOT NULL,
					contribution_amount INTEGER NOT NULL,
					PRIMARY KEY (match_id, round_number, source_player_id, beneficiary_player_id),
					FOREIGN KEY (match_id, round_number) REFERENCES rounds(match_id, round_number) ON DELETE CASCADE,
					CHECK (source_player_id <> beneficiary_player_id)
				);

				CREATE TABLE IF NOT EXISTS team_match_scores (
					match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
					team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
					group_id UUID NOT NULL,
					score DOUBLE PRECISION NOT NULL,
					PRIMARY KEY (match_id, team_id)
				);

				CREATE TABLE IF NOT EXISTS player_tournament_scores (
					player_id UUID NOT NULL REFERENCES players(id),
					tournament_id UUID NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
					group_id UUID NOT NULL,
					elo_rating INTEGER NOT NULL DEFAULT 1200,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (player_id, tournament_id)
				);
				CREATE INDEX IF NOT EXISTS idx_player_tournament_scores_rating
					ON player_tournament_scores(tournament_id, elo_rating DESC);
			`); err != nil {
				return fmt.Errorf("failed to create score tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping player, track and match tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS player_tournament_scores;
			DROP TABLE IF EXISTS team_match_scores;
			DROP TABLE IF EXISTS teammate_elo_contributions;
			DROP TABLE IF EXISTS player_match_scores;
			DROP TABLE IF EXISTS player_race_scores;
			DROP TABLE IF EXISTS round_players;
			DROP TABLE IF EXISTS rounds;
			DROP TABLE IF EXISTS team_players;
			DROP TABLE IF EXISTS teams;
			DROP TABLE IF EXISTS matches;
			DROP TABLE IF EXISTS tracks;
			DROP TABLE IF EXISTS players;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop match tables: %w", err)
		}
		return nil
	})
}
