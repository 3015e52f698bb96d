package locker

import (
	facelock "github.com/swdee/go-facelock"
)

// SameFace reports whether two detections plausibly refer to the same
// physical face based on bounding box center proximity.  This is a cheap
// spatial test used only to decide which detection to highlight as the
// locked face when rendering, identity decisions are always made from
// match results
func SameFace(a, b facelock.Detection, threshold float32) bool {
	return a.Box.Center().Distance(b.Box.Center()) < threshold
}
