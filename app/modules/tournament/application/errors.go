package tournamentservice

import (
	"errors"
	"fmt"
)

// Error classes, mirrored by the match module so the HTTP layer can map both
// the same way.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrEmptyName        = fmt.Errorf("%w: tournament name is required", ErrValidation)
	ErrMissingGroup     = fmt.Errorf("%w: group is required", ErrValidation)
	ErrInvalidDates     = fmt.Errorf("%w: end date is before start date", ErrValidation)
	ErrUnrecognizedTime = fmt.Errorf("%w: could not understand the close time", ErrValidation)
	ErrScheduleInPast   = fmt.Errorf("%w: close time must be in the future", ErrValidation)
)

var (
	ErrTournamentNotFound = fmt.Errorf("%w: tournament", ErrNotFound)
)

var (
	ErrTournamentClosed = fmt.Errorf("%w: tournament already has a winner", ErrConflict)
	ErrNoTournamentData = fmt.Errorf("%w: no player has a tournament rating yet", ErrConflict)
)

// ErrNoScheduler is returned when scheduling is asked for but no queue is wired.
var ErrNoScheduler = errors.New("tournament scheduler not configured")
