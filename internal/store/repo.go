package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionEventData captures a session timer lifecycle event.
type SessionEventData struct {
	SessionID     string
	Action        string // start, pause, resume, expire, reset
	Fast          bool
	DurationSecs  int
	RemainingSecs int
}

// SessionEvent is a stored SessionEventData.
type SessionEvent struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// QuizEventData captures the start or finish of a knowledge check.
type QuizEventData struct {
	SessionID string
	Action    string // start or finish
	Total     int
	Correct   int      // finish only
	Percent   int      // finish only
	Missed    []string // finish only
}

// QuizEvent is a stored QuizEventData.
type QuizEvent struct {
	Sequence  int64
	Timestamp time.Time
	QuizEventData
}

// AnswerEventData captures one submitted answer.
type AnswerEventData struct {
	SessionID      string
	QuestionID     string
	Concept        string
	Prompt         string
	Selected       int
	Answer         int
	Correct        bool
	StabilityAfter int
}

// LogEvent is a persisted narrative log line.
type LogEvent struct {
	Sequence  int64
	Timestamp time.Time
	Severity  string
	Text      string
}

// ConceptStat aggregates answers for one concept.
type ConceptStat struct {
	Concept  string
	Attempts int
	Correct  int
}

// Accuracy returns Correct/Attempts, or 0 with no attempts.
func (c ConceptStat) Accuracy() float64 {
	if c.Attempts == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempts)
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendQuizEvent(ctx context.Context, data QuizEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// AppendLogLine persists a narrative log line.
	AppendLogLine(ctx context.Context, severity, text string) error

	// QueryQuizzes returns quiz events, newest first. Only finished quizzes
	// are returned when finishedOnly is set.
	QueryQuizzes(ctx context.Context, finishedOnly bool, opts QueryOpts) ([]QuizEvent, error)

	// QuerySessions returns session events, newest first.
	QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// QueryLog returns persisted log lines, newest first.
	QueryLog(ctx context.Context, opts QueryOpts) ([]LogEvent, error)

	// ConceptAccuracy returns the fraction of correct answers for concept,
	// or 0 when it was never answered.
	ConceptAccuracy(ctx context.Context, concept string) (float64, error)

	// ConceptStats returns per-concept answer totals ordered by concept.
	ConceptStats(ctx context.Context) ([]ConceptStat, error)
}

// SnapshotData captures the profile at a point in time.
type SnapshotData struct {
	Version int    `json:"version"`
	Reason  string `json:"reason"`
	Profile string `json:"profile"` // the stored profile record, verbatim
}

// Snapshot represents a point-in-time capture of the profile.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages profile snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
