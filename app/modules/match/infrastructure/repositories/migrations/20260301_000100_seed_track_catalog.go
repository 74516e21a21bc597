package matchmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

var trackCatalog = []string{
	"Mario Kart Stadium", "Water Park", "Sweet Sweet Canyon", "Thwomp Ruins",
	"Mario Circuit", "Toad Harbor", "Twisted Mansion", "Shy Guy Falls",
	"Sunshine Airport", "Dolphin Shoals", "Electrodrome", "Mount Wario",
	"Cloudtop Cruise", "Bone-Dry Dunes", "Bowser's Castle", "Rainbow Road",
	"Moo Moo Meadows", "Mario Circuit (GBA)", "Cheep Cheep Beach", "Toad's Turnpike",
	"Dry Dry Desert", "Donut Plains 3", "Royal Raceway", "DK Jungle",
	"Wario Stadium", "Sherbet Land", "Music Park", "Yoshi Valley",
	"Tick-Tock Clock", "Piranha Plant Slide", "Grumble Volcano", "Rainbow Road (N64)",
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding track catalog...")
		for _, name := range trackCatalog {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO tracks (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name,
			); err != nil {
				return fmt.Errorf("failed to seed track %q: %w", name, err)
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing seeded tracks...")
		if _, err := db.ExecContext(ctx, `DELETE FROM tracks WHERE name IN (?)`, bun.In(trackCatalog)); err != nil {
			return fmt.Errorf("failed to remove seeded tracks: %w", err)
		}
		return nil
	})
}
