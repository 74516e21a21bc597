package matchservice

import (
	"context"
	"errors"
	"fmt"

	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SelectTracks draws count tracks for the tournament, avoiding tracks
// played earlier in the current pass through the catalog.
func (s *MatchService) SelectTracks(ctx context.Context, tournamentID uuid.UUID, count int) (TracksResult, error) {
	return withTelemetry(s, ctx, "SelectTracks", tournamentID.String(), func(ctx context.Context) (TracksResult, error) {
		if count < 0 {
			return failure[[]uuid.UUID](ErrInvalidTrackCount), nil
		}
		tracks, err := s.selectTracks(ctx, nil, tournamentID, count, false)
		if err != nil {
			if errors.Is(err, ErrNotEnoughTracks) {
				return failure[[]uuid.UUID](err), nil
			}
			return TracksResult{}, err
		}
		return success(tracks), nil
	})
}

// selectTracks draws count tracks. With clamp set, a catalog smaller than
// count yields the whole catalog instead of ErrNotEnoughTracks.
func (s *MatchService) selectTracks(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, count int, clamp bool) ([]uuid.UUID, error) {
	if count == 0 {
		return []uuid.UUID{}, nil
	}
	catalog, err := s.repo.ListTrackIDs(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	if clamp {
		count = min(count, len(catalog))
		if count == 0 {
			return []uuid.UUID{}, nil
		}
	}
	if count > len(catalog) {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughTracks, count, len(catalog))
	}

	played, err := s.repo.CountPlayedTrackRounds(ctx, db, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count played tracks: %w", err)
	}
	recent, err := s.repo.ListRecentTrackIDs(ctx, db, tournamentID, played%len(catalog))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tracks: %w", err)
	}

	tracks, err := matchdomain.DrawTracks(catalog, recent, played, count, s.rng)
	if err != nil {
		if errors.Is(err, matchdomain.ErrNotEnoughTracks) {
			return nil, ErrNotEnoughTracks
		}
		return nil, err
	}
	return tracks, nil
}
