// Package events defines the payloads the bot publishes and the topics they
// are published on.
package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// StreamName is the JetStream stream holding every kart event.
	StreamName = "KART"

	MatchUpdatedTopic        = "kart.match.updated.v1"
	TournamentCompletedTopic = "kart.tournament.completed.v1"
)

// Subjects lists the wildcard subjects the stream must capture.
var Subjects = []string{
	MatchUpdatedTopic + ".*",
	TournamentCompletedTopic + ".*",
}

// MatchUpdatedPayload announces a new match or a scored round.
// RoundNumber is 0 when the match was just created.
type MatchUpdatedPayload struct {
	MatchID      uuid.UUID `json:"match_id"`
	TournamentID uuid.UUID `json:"tournament_id"`
	GroupID      uuid.UUID `json:"group_id"`
	RoundNumber  int       `json:"round_number"`
	Completed    bool      `json:"completed"`
}

type TournamentCompletedPayload struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	GroupID      uuid.UUID `json:"group_id"`
	WinnerID     uuid.UUID `json:"winner_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// GroupScopedTopic appends the group id to a base topic so consumers can
// subscribe to one group ("kart.match.updated.v1.<id>") or all of them
// ("kart.match.updated.v1.*").
func GroupScopedTopic(baseTopic string, groupID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", baseTopic, groupID)
}
