package facelock

import (
	"time"
)

// ActionKind is the type of a detected face action
type ActionKind string

const (
	// Movement is a horizontal face movement exceeding the configured
	// pixel threshold
	Movement ActionKind = "movement"
	// Blink is an eye blink, detected on the recovery edge after the eyes
	// reopen
	Blink ActionKind = "blink"
	// Smile is a smile or laugh, detected from a mouth curvature increase
	Smile ActionKind = "smile"
)

// Action is a discrete behavioral event derived from landmark geometry
// changes across frames.  Actions are immutable once created
type Action struct {
	// Timestamp is the time the action was detected
	Timestamp time.Time
	// Kind of action detected
	Kind ActionKind
	// Description is a human readable description of the action
	Description string
	// Value carries the measurement that triggered the action, eg: pixel
	// displacement for movement, eye ratio for blink
	Value float32
	// HasValue indicates whether Value is set
	HasValue bool
}
