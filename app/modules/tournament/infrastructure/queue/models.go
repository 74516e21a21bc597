package tournamentqueue

import "github.com/google/uuid"

const (
	queueName = "tournament"

	completeJobKind = "tournament_complete"
)

// CompleteTournamentJob closes a tournament at its scheduled time.
type CompleteTournamentJob struct {
	TournamentID uuid.UUID `json:"tournament_id"`
}

// Kind returns the job type identifier for River
func (CompleteTournamentJob) Kind() string { return completeJobKind }

// JobInfo describes a queued close (for debugging/monitoring).
type JobInfo struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	TournamentID string `json:"tournament_id"`
	State        string `json:"state"`
	ScheduledAt  string `json:"scheduled_at"`
	CreatedAt    string `json:"created_at"`
	Attempt      int    `json:"attempt"`
	MaxAttempts  int    `json:"max_attempts"`
}
