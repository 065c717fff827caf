package session

import "time"

// TrackStatus tracks one exported file through its lifecycle.
type TrackStatus string

const (
	TrackPending   TrackStatus = "pending"
	TrackRunning   TrackStatus = "running"
	TrackSucceeded TrackStatus = "succeeded"
	TrackFailed    TrackStatus = "failed"
	TrackCancelled TrackStatus = "cancelled"
)

// Outcome is the final state of a whole rip session.
type Outcome string

const (
	// OutcomeRunning marks a session still in flight, or one abandoned by
	// a crash.
	OutcomeRunning Outcome = "running"
	// OutcomeCompleted marks a session whose tracks all succeeded.
	OutcomeCompleted Outcome = "completed"
	// OutcomeFailed marks a session stopped by the first track error.
	OutcomeFailed Outcome = "failed"
	// OutcomeIncomplete marks a session stopped cooperatively before all
	// tracks were exported.
	OutcomeIncomplete Outcome = "incomplete"
)

// Session is one rip run.
type Session struct {
	ID           string
	GameDir      string
	OutputDir    string
	Language     string
	TrackTotal   int
	Outcome      Outcome
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Finished reports whether the session has a terminal outcome recorded.
func (s *Session) Finished() bool {
	return s != nil && !s.FinishedAt.IsZero()
}

// TrackRecord is the persisted state of one track within a session.
// Album and track number together identify the track.
type TrackRecord struct {
	SessionID    string
	AlbumNumber  int
	TrackNumber  int
	Title        string
	Artist       string
	Status       TrackStatus
	OutputPath   string
	ErrorMessage string
	UpdatedAt    time.Time
}
