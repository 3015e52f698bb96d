package engine

import (
	"time"

	facelock "github.com/swdee/go-facelock"
	"github.com/swdee/go-facelock/locker"
)

// Face is one annotated face detection within a Frame
type Face struct {
	// Detection is the face observation for this frame
	Detection facelock.Detection
	// Match is the identity match result for the face
	Match facelock.MatchResult
	// Locked indicates this detection corresponds to the currently
	// locked face
	Locked bool
}

// Frame is the render ready annotation set produced for each processed
// frame
type Frame struct {
	// Faces are all face detections in this frame
	Faces []Face
	// Target is the identity being searched for or tracked
	Target string
	// State is the current lock state
	State locker.State
	// LockDuration is how long the lock has been held, zero while
	// searching
	LockDuration time.Duration
	// ActionCount is the number of actions recorded this session
	ActionCount int
}
