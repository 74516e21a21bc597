package matchhandlers

import (
	"context"
	"log/slog"

	matchservice "github.com/Black-And-White-Club/kart-bot/app/modules/match/application"
	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
	"github.com/Black-And-White-Club/kart-bot/pkg/httpx"
	"github.com/google/uuid"
)

// Service is the part of the match service the HTTP API drives.
type Service interface {
	CreatePlayer(ctx context.Context, groupID uuid.UUID, name string) (matchservice.CreatedPlayerResult, error)
	AllocateTeams(ctx context.Context, playerIDs []uuid.UUID, teamCount int, mode matchdomain.AllocationMode) (matchservice.TeamsResult, error)
	AllocateRaces(ctx context.Context, teams [][]uuid.UUID, rounds int) (matchservice.LineupResult, error)
	SelectTracks(ctx context.Context, tournamentID uuid.UUID, count int) (matchservice.TracksResult, error)
	CreateMatch(ctx context.Context, req matchservice.CreateMatchRequest) (matchservice.MatchResult, error)
	GetMatch(ctx context.Context, matchID uuid.UUID) (matchservice.MatchResult, error)
	RecordRoundResults(ctx context.Context, matchID uuid.UUID, roundNumber int, submitted []matchservice.PlayerResult) (matchservice.RoundResult, error)
	SwapRoundParticipant(ctx context.Context, matchID uuid.UUID, roundNumber int, outPlayerID, inPlayerID uuid.UUID) (matchservice.RosterResult, error)
}

var errorClasses = httpx.ErrorClasses{
	Validation: matchservice.ErrValidation,
	NotFound:   matchservice.ErrNotFound,
	Conflict:   matchservice.ErrConflict,
}

// MatchHandlers serves the match endpoints.
type MatchHandlers struct {
	service     Service
	logger      *slog.Logger
	defaultMode matchdomain.AllocationMode
}

// NewMatchHandlers creates the handlers. defaultMode applies when a request
// names no allocation mode.
func NewMatchHandlers(service Service, logger *slog.Logger, defaultMode matchdomain.AllocationMode) *MatchHandlers {
	return &MatchHandlers{service: service, logger: logger, defaultMode: defaultMode}
}

func (h *MatchHandlers) allocationMode(s string) (matchdomain.AllocationMode, error) {
	if s == "" && h.defaultMode != "" {
		return h.defaultMode, nil
	}
	return matchdomain.ParseAllocationMode(s)
}
