package matchservice

import (
	"errors"
	"fmt"

	matchdomain "github.com/Black-And-White-Club/kart-bot/app/modules/match/domain"
)

// Error classes. Every domain error below wraps exactly one of them so callers
// can branch with errors.Is(err, ErrConflict) and friends.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Validation errors.
var (
	ErrNoPlayers            = fmt.Errorf("%w: at least one player is required", ErrValidation)
	ErrMissingGroup         = fmt.Errorf("%w: group id is required", ErrValidation)
	ErrEmptyPlayerName      = fmt.Errorf("%w: player name is required", ErrValidation)
	ErrPlayerNameTooLong    = fmt.Errorf("%w: player name is longer than %d characters", ErrValidation, MaxPlayerNameLength)
	ErrInvalidPlayerName    = fmt.Errorf("%w: player name may only contain letters, digits, spaces and -_'.", ErrValidation)
	ErrInvalidRoundCount    = fmt.Errorf("%w: rounds must be positive", ErrValidation)
	ErrInvalidTeamCount     = fmt.Errorf("%w: teams per race must be positive", ErrValidation)
	ErrTooManyTeams         = fmt.Errorf("%w: more teams than players", ErrValidation)
	ErrNotEnoughRaceSlots   = fmt.Errorf("%w: rounds times teams must cover every player", ErrValidation)
	ErrDuplicatePlayer      = fmt.Errorf("%w: duplicate player", ErrValidation)
	ErrEmptyTeam            = fmt.Errorf("%w: team has no players", ErrValidation)
	ErrNoResults            = fmt.Errorf("%w: no results submitted", ErrValidation)
	ErrInvalidPosition      = fmt.Errorf("%w: position must be between 1 and %d", ErrValidation, matchdomain.FieldSize)
	ErrDuplicatePosition    = fmt.Errorf("%w: duplicate position", ErrValidation)
	ErrParticipantMismatch  = fmt.Errorf("%w: submitted players do not match the round lineup", ErrValidation)
	ErrPlayerNotInRound     = fmt.Errorf("%w: player is not racing in this round", ErrValidation)
	ErrPlayerAlreadyInRound = fmt.Errorf("%w: player is already racing in this round", ErrValidation)
	ErrPlayerNotInGroup     = fmt.Errorf("%w: player belongs to another group", ErrValidation)
	ErrPlayerOnOtherTeam    = fmt.Errorf("%w: player is rostered on another team of this match", ErrValidation)
	ErrInvalidTrackCount    = fmt.Errorf("%w: track count must not be negative", ErrValidation)
	ErrNotEnoughTracks      = fmt.Errorf("%w: %w", ErrValidation, matchdomain.ErrNotEnoughTracks)
)

// Lookup errors.
var (
	ErrMatchNotFound      = fmt.Errorf("%w: match", ErrNotFound)
	ErrRoundNotFound      = fmt.Errorf("%w: round", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("%w: player", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
)

// State conflicts.
var (
	ErrMatchCompleted     = fmt.Errorf("%w: match already completed", ErrConflict)
	ErrRoundAlreadyScored = fmt.Errorf("%w: round already scored", ErrConflict)
	ErrTournamentClosed   = fmt.Errorf("%w: tournament already has a winner", ErrConflict)
)
