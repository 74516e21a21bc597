package matchservice

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	matchdb "github.com/Black-And-White-Club/kart-bot/app/modules/match/infrastructure/repositories"
	"github.com/google/uuid"
)

const MaxPlayerNameLength = 100

// CreatePlayer registers a racer in a group at the starting rating.
func (s *MatchService) CreatePlayer(ctx context.Context, groupID uuid.UUID, name string) (CreatedPlayerResult, error) {
	return withTelemetry(s, ctx, "CreatePlayer", groupID.String(), func(ctx context.Context) (CreatedPlayerResult, error) {
		name = strings.TrimSpace(name)
		if err := validatePlayer(groupID, name); err != nil {
			return failure[matchdb.Player](err), nil
		}

		player := &matchdb.Player{
			ID:        uuid.New(),
			GroupID:   groupID,
			Name:      name,
			EloRating: s.startRating,
			CreatedAt: s.clock.NowUTC(),
		}
		if err := s.repo.CreatePlayer(ctx, nil, player); err != nil {
			return CreatedPlayerResult{}, fmt.Errorf("failed to create player: %w", err)
		}
		return success(*player), nil
	})
}

func validatePlayer(groupID uuid.UUID, name string) error {
	if groupID == uuid.Nil {
		return ErrMissingGroup
	}
	if name == "" {
		return ErrEmptyPlayerName
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return ErrPlayerNameTooLong
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune("-_'.", r) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidPlayerName, r)
	}
	return nil
}
