// Package locker implements the face lock state machine.  A Locker owns
// the SEARCHING/LOCKED state for a single target identity, acquiring a lock
// when the target is matched with high confidence and releasing it after a
// timeout without detection.  While locked it runs action detection on the
// tracked face and records the results to the session history.
package locker

import (
	"fmt"
	"time"

	facelock "github.com/swdee/go-facelock"
)

// State represents the lock state machine state
type State int

const (
	// Searching means no lock is held and candidates are scanned for the
	// target identity
	Searching State = iota
	// Locked means the target identity is actively being tracked
	Locked
)

// String returns the display name of the state
func (s State) String() string {
	if s == Locked {
		return "LOCKED"
	}
	return "SEARCHING"
}

// Locker is the lock state machine for a single target identity.  It is
// not safe for concurrent use, the frame loop drives it from one goroutine
type Locker struct {
	cfg     facelock.Config
	target  string
	state   State
	session *Session
	mem     Memory
}

// New returns a Locker in the Searching state for the given target
func New(cfg facelock.Config, target string) *Locker {
	return &Locker{
		cfg:    cfg,
		target: target,
	}
}

// State returns the current lock state
func (l *Locker) State() State {
	return l.state
}

// Target returns the target identity name
func (l *Locker) Target() string {
	return l.target
}

// Session returns the open lock session, or nil while searching
func (l *Locker) Session() *Session {
	return l.session
}

// LockedFace returns the detection currently adopted as the locked face
func (l *Locker) LockedFace() (facelock.Detection, bool) {
	if l.session == nil {
		return facelock.Detection{}, false
	}
	return l.session.Face, true
}

// Update advances the state machine by one frame, given the candidate
// detection/match pairs for the frame in detector reported order
func (l *Locker) Update(cands []facelock.Candidate, now time.Time) error {

	if l.state == Locked {
		return l.track(cands, now)
	}

	return l.search(cands, now)
}

// search scans candidates in order and acquires a lock on the first one
// matching the target at or above the lock confidence threshold.  No
// qualifying candidate leaves the machine searching with no side effects
func (l *Locker) search(cands []facelock.Candidate, now time.Time) error {

	for _, cand := range cands {

		if cand.Match.Name != l.target ||
			cand.Match.Similarity < l.cfg.LockConfidence {
			continue
		}

		session, err := newSession(l.cfg.HistoryDir, l.target,
			cand.Detection, now)

		if err != nil {
			return fmt.Errorf("error acquiring lock: %w", err)
		}

		l.session = session
		l.mem = Memory{}
		l.state = Locked
		return nil
	}

	return nil
}

// track follows the target while locked.  Continued tracking uses the lower
// tracking tolerance threshold so pose and lighting variation does not flap
// the lock once identity is established
func (l *Locker) track(cands []facelock.Candidate, now time.Time) error {

	// pick the best qualifying candidate, ties broken by first seen order
	best := -1

	for i, cand := range cands {

		if cand.Match.Name != l.target ||
			cand.Match.Similarity < l.cfg.TrackingTolerance {
			continue
		}

		if best < 0 || cand.Match.Similarity > cands[best].Match.Similarity {
			best = i
		}
	}

	if best < 0 {
		// grace period for transient misses, release only once the
		// timeout has elapsed since the target was last seen
		if now.Sub(l.session.LastSeen) > l.cfg.Timeout() {
			return l.Release(now)
		}
		return nil
	}

	cand := cands[best]
	l.session.Face = cand.Detection
	l.session.LastSeen = now

	var actions []facelock.Action
	l.mem, actions = DetectActions(l.cfg, l.mem, cand.Detection, now)

	for _, a := range actions {
		if err := l.session.record(a); err != nil {
			return fmt.Errorf("error recording action: %w", err)
		}
	}

	return nil
}

// Release finalizes the open session history log and returns the machine to
// the Searching state.  A manual release runs this same path regardless of
// the timeout state.  It is a no-op while searching
func (l *Locker) Release(now time.Time) error {

	if l.state != Locked {
		return nil
	}

	err := l.session.finalize(now)

	l.session = nil
	l.state = Searching

	if err != nil {
		return fmt.Errorf("error finalizing session: %w", err)
	}

	return nil
}
