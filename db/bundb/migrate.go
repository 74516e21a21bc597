package bundb

import (
	"context"
	"fmt"
	"log/slog"

	matchmigrations "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories/migrations"
	tournamentmigrations "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module is one module's migration set.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules lists every module in foreign key order: match tables reference
// tournaments.
func Modules() []Module {
	return []Module{
		{Name: "tournament", Migrations: tournamentmigrations.Migrations},
		{Name: "match", Migrations: matchmigrations.Migrations},
	}
}

// Migrate brings the River queue tables and every module schema up to date.
func Migrate(ctx context.Context, db *bun.DB, dsn string, logger *slog.Logger) error {
	if err := MigrateRiver(ctx, dsn, logger); err != nil {
		return err
	}

	modules := Modules()
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	for _, mod := range modules {
		if err := migrateModule(ctx, db, mod, logger); err != nil {
			return err
		}
	}
	return nil
}

func migrateModule(ctx context.Context, db *bun.DB, mod Module, logger *slog.Logger) error {
	group, err := migrate.NewMigrator(db, mod.Migrations).Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "No new migrations", attr.String("module", mod.Name))
		return nil
	}
	logger.InfoContext(ctx, "Migrated module",
		attr.String("module", mod.Name),
		attr.Int64("group", group.ID),
	)
	return nil
}

// MigrateRiver runs River's own schema migrations over a short lived pgx pool.
func MigrateRiver(ctx context.Context, dsn string, logger *slog.Logger) error {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	logger.InfoContext(ctx, "River migrations complete", attr.Int("versions_applied", len(res.Versions)))
	return nil
}
