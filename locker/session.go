package locker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	facelock "github.com/swdee/go-facelock"
	"github.com/swdee/go-facelock/history"
)

// Session represents one continuous interval during which the target
// identity is locked.  It is created at lock acquisition and destroyed at
// lock release, with at most one existing at a time
type Session struct {
	// ID uniquely identifies the session
	ID uuid.UUID
	// Target is the locked identity name
	Target string
	// StartedAt is the lock acquisition time
	StartedAt time.Time
	// LastSeen is the last time the target was detected.  Never earlier
	// than StartedAt while the session is open
	LastSeen time.Time
	// Face is the most recent detection adopted as the locked face
	Face facelock.Detection
	// Actions accumulated over the session in frame arrival order
	Actions []facelock.Action

	log *history.Log
}

// newSession opens a session and its history log at lock acquisition time
func newSession(dir, target string, face facelock.Detection,
	now time.Time) (*Session, error) {

	log, err := history.Open(dir, target, now)

	if err != nil {
		return nil, fmt.Errorf("error opening history log: %w", err)
	}

	return &Session{
		ID:        uuid.New(),
		Target:    target,
		StartedAt: now,
		LastSeen:  now,
		Face:      face,
		log:       log,
	}, nil
}

// record appends an action to the session and its history log
func (s *Session) record(a facelock.Action) error {
	s.Actions = append(s.Actions, a)
	return s.log.Append(a)
}

// Duration returns how long the session has been locked
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// HistoryPath returns the location of the session history file
func (s *Session) HistoryPath() string {
	return s.log.Path()
}

// finalize writes the history footer and closes the log
func (s *Session) finalize(now time.Time) error {
	return s.log.Finalize(s.Actions, now)
}
