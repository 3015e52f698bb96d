package locker

import (
	"time"

	facelock "github.com/swdee/go-facelock"
)

// Memory carries the single frame of action detector state between calls.
// It is owned by the Locker and zeroed at lock acquisition so actions are
// never attributed across a lock boundary
type Memory struct {
	// Center is the previous frame's bounding box center
	Center facelock.Point
	// HasCenter indicates Center holds a measurement
	HasCenter bool
	// EyeRatio is the previous eye aspect ratio measurement
	EyeRatio float32
	// HasEyeRatio indicates EyeRatio holds a measurement
	HasEyeRatio bool
	// MouthCurve is the previous mouth curvature measurement
	MouthCurve float32
	// HasMouthCurve indicates MouthCurve holds a measurement
	HasMouthCurve bool
	// BlinkClosed latches while the eye ratio sits below the blink
	// threshold, and clears when the blink action fires on recovery
	BlinkClosed bool
}

// DetectActions derives face actions from the change in landmark geometry
// between the previous memory and the current detection.  It returns the
// updated memory and any actions detected this frame.  A failed landmark
// measurement skips that action and leaves its memory slot untouched, so
// the next successful measurement compares against the last valid one
func DetectActions(cfg facelock.Config, mem Memory, det facelock.Detection,
	now time.Time) (Memory, []facelock.Action) {

	var actions []facelock.Action

	// movement is measured against the immediately preceding frame only,
	// not a rolling baseline, since this runs every frame
	center := det.Box.Center()

	if mem.HasCenter {
		dx := center.X - mem.Center.X

		if abs(dx) > cfg.MovementThreshold {
			direction := "left"
			if dx > 0 {
				direction = "right"
			}

			actions = append(actions, facelock.Action{
				Timestamp:   now,
				Kind:        facelock.Movement,
				Description: "face moved " + direction,
				Value:       abs(dx),
				HasValue:    true,
			})
		}
	}

	mem.Center = center
	mem.HasCenter = true

	// blink fires on the recovery edge only: the latch sets when the eye
	// ratio drops below the threshold and the action fires once the ratio
	// rises back above 1.5x the threshold
	if ratio, ok := eyeAspectRatio(det.Landmarks); ok {

		if mem.HasEyeRatio {
			if !mem.BlinkClosed && ratio < cfg.BlinkThreshold {
				mem.BlinkClosed = true

			} else if mem.BlinkClosed && ratio > cfg.BlinkThreshold*1.5 {
				mem.BlinkClosed = false

				actions = append(actions, facelock.Action{
					Timestamp:   now,
					Kind:        facelock.Blink,
					Description: "eye blink detected",
					Value:       ratio,
					HasValue:    true,
				})
			}
		}

		mem.EyeRatio = ratio
		mem.HasEyeRatio = true
	}

	// smile is a frame to frame delta test with no latch, so a sustained
	// smile only keeps emitting while the curvature is still increasing
	if curve, ok := mouthCurve(det.Landmarks); ok {

		if mem.HasMouthCurve && curve-mem.MouthCurve > cfg.SmileThreshold {
			actions = append(actions, facelock.Action{
				Timestamp:   now,
				Kind:        facelock.Smile,
				Description: "smile or laugh detected",
				Value:       curve,
				HasValue:    true,
			})
		}

		mem.MouthCurve = curve
		mem.HasMouthCurve = true
	}

	return mem, actions
}

// eyeAspectRatio approximates an eye aspect ratio from the five sparse
// landmarks as the average eye to nose distance over the inter eye
// distance.  Returns false when the geometry is degenerate
func eyeAspectRatio(lm facelock.Landmarks) (float32, bool) {

	eyeDistance := lm[facelock.LeftEye].Distance(lm[facelock.RightEye])

	if eyeDistance <= 0 {
		return 0, false
	}

	leftToNose := lm[facelock.LeftEye].Distance(lm[facelock.Nose])
	rightToNose := lm[facelock.RightEye].Distance(lm[facelock.Nose])

	return ((leftToNose + rightToNose) / 2) / eyeDistance, true
}

// mouthCurve approximates mouth curvature as the nose to mouth center
// distance over the inter mouth corner distance.  Returns false when the
// geometry is degenerate
func mouthCurve(lm facelock.Landmarks) (float32, bool) {

	left := lm[facelock.LeftMouthCorner]
	right := lm[facelock.RightMouthCorner]

	width := left.Distance(right)

	if width <= 0 {
		return 0, false
	}

	center := facelock.Point{
		X: (left.X + right.X) / 2,
		Y: (left.Y + right.Y) / 2,
	}

	return lm[facelock.Nose].Distance(center) / width, true
}

// abs returns the absolute value of a float32
func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
