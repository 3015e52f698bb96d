// Package engine drives the per frame face locking cycle: detect faces,
// match each one against the enrollment database, feed the lock state
// machine, and emit a render ready annotation set.  The engine is single
// threaded, one frame is processed to completion before the next is pulled.
package engine

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	facelock "github.com/swdee/go-facelock"
	"github.com/swdee/go-facelock/locker"
)

// Engine is the frame orchestrator.  It owns the lock state machine and
// the collaborator adapters for detection, embedding and matching
type Engine struct {
	cfg      facelock.Config
	detector facelock.FaceDetector
	embedder facelock.FaceEmbedder
	matcher  facelock.IdentityMatcher
	lock     *locker.Locker
}

// New returns an Engine locked onto searching for the target identity.
// The config is validated up front so threshold mistakes surface before
// the frame loop starts
func New(cfg facelock.Config, detector facelock.FaceDetector,
	embedder facelock.FaceEmbedder, matcher facelock.IdentityMatcher,
	target string) (*Engine, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if target == "" {
		return nil, fmt.Errorf("no target identity given")
	}

	return &Engine{
		cfg:      cfg,
		detector: detector,
		embedder: embedder,
		matcher:  matcher,
		lock:     locker.New(cfg, target),
	}, nil
}

// Process runs one frame through the detection, matching and locking cycle
// and returns the frame annotations.  A detector failure is fatal to the
// frame, failures on individual faces are not
func (e *Engine) Process(img gocv.Mat, now time.Time) (Frame, error) {

	dets, err := e.detector.Detect(img, e.cfg.MaxFaces)

	if err != nil {
		return Frame{}, fmt.Errorf("face detection failed: %w", err)
	}

	cands := e.matchAll(img, dets)

	if err := e.lock.Update(cands, now); err != nil {
		return Frame{}, fmt.Errorf("lock update failed: %w", err)
	}

	return e.annotate(cands, now), nil
}

// matchAll runs embedding and matching for each detected face.  Each face
// is evaluated independently, a failure on one leaves it unmatched and does
// not block the others
func (e *Engine) matchAll(img gocv.Mat,
	dets []facelock.Detection) []facelock.Candidate {

	cands := make([]facelock.Candidate, 0, len(dets))

	for _, det := range dets {

		cand := facelock.Candidate{
			Detection: det,
			Match:     facelock.NoMatch(),
		}

		if emb, err := e.embedder.Embed(img, det); err == nil {
			cand.Match = e.matcher.Match(emb)
		}

		cands = append(cands, cand)
	}

	return cands
}

// annotate builds the render ready annotation set for the frame
func (e *Engine) annotate(cands []facelock.Candidate, now time.Time) Frame {

	frame := Frame{
		Target: e.lock.Target(),
		State:  e.lock.State(),
		Faces:  make([]Face, 0, len(cands)),
	}

	if sess := e.lock.Session(); sess != nil {
		frame.LockDuration = sess.Duration(now)
		frame.ActionCount = len(sess.Actions)
	}

	lockedFace, isLocked := e.lock.LockedFace()

	for _, cand := range cands {

		face := Face{
			Detection: cand.Detection,
			Match:     cand.Match,
		}

		if isLocked && locker.SameFace(cand.Detection, lockedFace,
			e.cfg.AssociationThreshold) {
			face.Locked = true
		}

		frame.Faces = append(frame.Faces, face)
	}

	return frame
}

// Target returns the current target identity
func (e *Engine) Target() string {
	return e.lock.Target()
}

// State returns the current lock state
func (e *Engine) State() locker.State {
	return e.lock.State()
}

// Session returns the open lock session, or nil while searching
func (e *Engine) Session() *locker.Session {
	return e.lock.Session()
}

// Release manually releases the current lock, finalizing its history log
func (e *Engine) Release(now time.Time) error {
	return e.lock.Release(now)
}

// ChangeTarget releases any held lock and restarts the state machine with
// a new target identity.  The release tears the old lock down even when
// finalizing its history log fails, so the swap always takes effect and the
// finalize error is reported afterwards
func (e *Engine) ChangeTarget(target string, now time.Time) error {

	if target == "" {
		return fmt.Errorf("no target identity given")
	}

	err := e.lock.Release(now)
	e.lock = locker.New(e.cfg, target)

	return err
}

// Close releases any open session so no history log handle is left
// dangling at shutdown.  Safe to call when no lock is held
func (e *Engine) Close(now time.Time) error {
	return e.lock.Release(now)
}
