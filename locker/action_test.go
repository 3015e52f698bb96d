package locker

import (
	"math"
	"testing"
	"time"

	facelock "github.com/swdee/go-facelock"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

// boxAt returns a 100x100 detection box centered at the given x coordinate.
// All landmarks are left at the origin so eye and mouth measurements are
// degenerate and skipped
func boxAt(cx float32) facelock.Detection {
	return facelock.Detection{
		Box: facelock.Box{
			X1: cx - 50,
			Y1: 100,
			X2: cx + 50,
			Y2: 200,
		},
	}
}

// eyesAt returns a detection with a fixed box and eye landmarks 100px apart,
// with the nose at the given y coordinate.  The mouth corners stay at the
// origin so the mouth measurement is degenerate and skipped
func eyesAt(noseY float32) facelock.Detection {
	det := boxAt(150)
	det.Landmarks[facelock.LeftEye] = facelock.Point{X: 100, Y: 100}
	det.Landmarks[facelock.RightEye] = facelock.Point{X: 200, Y: 100}
	det.Landmarks[facelock.Nose] = facelock.Point{X: 150, Y: noseY}
	return det
}

// mouthAt returns a detection with mouth corners 100px apart and the nose at
// the given y coordinate.  The eye landmarks stay at the origin so the eye
// measurement is degenerate and skipped
func mouthAt(noseY float32) facelock.Detection {
	det := boxAt(150)
	det.Landmarks[facelock.Nose] = facelock.Point{X: 150, Y: noseY}
	det.Landmarks[facelock.LeftMouthCorner] = facelock.Point{X: 100, Y: 200}
	det.Landmarks[facelock.RightMouthCorner] = facelock.Point{X: 200, Y: 200}
	return det
}

// movementConfig returns a config where only the movement action can fire
func movementConfig() facelock.Config {
	cfg := facelock.DefaultConfig()
	cfg.MovementThreshold = 30
	cfg.BlinkThreshold = 0.0001
	cfg.SmileThreshold = 1000
	return cfg
}

// blinkConfig returns a config where only the blink action can fire.  The
// eye landmarks in eyesAt give a ratio of 0.5 with the nose on the eye line,
// so a threshold of 0.6 treats that pose as closed and requires a recovery
// ratio above 0.9
func blinkConfig() facelock.Config {
	cfg := facelock.DefaultConfig()
	cfg.MovementThreshold = 1000
	cfg.BlinkThreshold = 0.6
	cfg.SmileThreshold = 1000
	return cfg
}

// smileConfig returns a config where only the smile action can fire
func smileConfig() facelock.Config {
	cfg := facelock.DefaultConfig()
	cfg.MovementThreshold = 1000
	cfg.BlinkThreshold = 0.0001
	cfg.SmileThreshold = 0.02
	return cfg
}

func TestMovementDetection(t *testing.T) {

	cfg := movementConfig()
	now := time.Now()

	var mem Memory
	var actions []facelock.Action

	// first frame establishes the baseline, no action possible
	mem, actions = DetectActions(cfg, mem, boxAt(100), now)

	if len(actions) != 0 {
		t.Fatalf("expected no actions on first frame, got %d", len(actions))
	}

	if !mem.HasCenter {
		t.Fatal("expected center memory to be set after first frame")
	}

	// 45px to the right exceeds the 30px threshold
	mem, actions = DetectActions(cfg, mem, boxAt(145), now)

	if len(actions) != 1 {
		t.Fatalf("expected 1 movement action, got %d", len(actions))
	}

	if actions[0].Kind != facelock.Movement {
		t.Errorf("expected movement kind, got %s", actions[0].Kind)
	}

	if actions[0].Description != "face moved right" {
		t.Errorf("unexpected description %q", actions[0].Description)
	}

	if !actions[0].HasValue || !almostEqual(actions[0].Value, 45, 0.001) {
		t.Errorf("expected value 45, got %v", actions[0].Value)
	}

	// no displacement, no action
	mem, actions = DetectActions(cfg, mem, boxAt(145), now)

	if len(actions) != 0 {
		t.Fatalf("expected no actions without displacement, got %d", len(actions))
	}

	// 45px back to the left
	_, actions = DetectActions(cfg, mem, boxAt(100), now)

	if len(actions) != 1 || actions[0].Description != "face moved left" {
		t.Fatalf("expected a single move left action, got %+v", actions)
	}
}

func TestMovementExactlyAtThresholdDoesNotFire(t *testing.T) {

	cfg := movementConfig()
	now := time.Now()

	mem, _ := DetectActions(cfg, Memory{}, boxAt(100), now)
	_, actions := DetectActions(cfg, mem, boxAt(130), now)

	if len(actions) != 0 {
		t.Fatalf("displacement equal to the threshold must not fire, got %+v",
			actions)
	}
}

func TestBlinkFiresOncePerDip(t *testing.T) {

	cfg := blinkConfig()
	now := time.Now()

	var mem Memory
	var actions []facelock.Action

	frames := []struct {
		noseY      float32
		wantBlinks int
	}{
		{190, 0}, // open, baseline measurement
		{100, 0}, // closed, latch arms
		{100, 0}, // still closed, no duplicate
		{190, 1}, // recovery above 1.5x threshold, blink fires
		{190, 0}, // still open, fires only on the recovery edge
	}

	for i, f := range frames {
		mem, actions = DetectActions(cfg, mem, eyesAt(f.noseY), now)

		if len(actions) != f.wantBlinks {
			t.Fatalf("frame %d: expected %d blinks, got %d",
				i, f.wantBlinks, len(actions))
		}
	}
}

func TestBlinkValueIsRecoveryRatio(t *testing.T) {

	cfg := blinkConfig()
	now := time.Now()

	mem, _ := DetectActions(cfg, Memory{}, eyesAt(190), now)
	mem, _ = DetectActions(cfg, mem, eyesAt(100), now)
	_, actions := DetectActions(cfg, mem, eyesAt(190), now)

	if len(actions) != 1 || actions[0].Kind != facelock.Blink {
		t.Fatalf("expected a single blink action, got %+v", actions)
	}

	// recovery ratio for the nose 90px below the eye line is
	// sqrt(50^2 + 90^2) / 100
	want := float32(math.Sqrt(50*50+90*90) / 100)

	if !almostEqual(actions[0].Value, want, 0.001) {
		t.Errorf("expected blink value %v, got %v", want, actions[0].Value)
	}

	if actions[0].Description != "eye blink detected" {
		t.Errorf("unexpected description %q", actions[0].Description)
	}
}

func TestBlinkLatchNeedsPreviousMeasurement(t *testing.T) {

	cfg := blinkConfig()
	now := time.Now()

	// eyes closed on the very first measurement must not arm the latch
	mem, _ := DetectActions(cfg, Memory{}, eyesAt(100), now)

	if mem.BlinkClosed {
		t.Fatal("latch must not arm on the first measurement")
	}

	// so the following recovery must not fire a blink
	_, actions := DetectActions(cfg, mem, eyesAt(190), now)

	if len(actions) != 0 {
		t.Fatalf("expected no blink without a previous measurement, got %+v",
			actions)
	}
}

func TestBlinkPartialRecoveryDoesNotFire(t *testing.T) {

	cfg := blinkConfig()
	now := time.Now()

	mem, _ := DetectActions(cfg, Memory{}, eyesAt(190), now)
	mem, _ = DetectActions(cfg, mem, eyesAt(100), now)

	// nose 62.45px below the eye line gives a ratio of about 0.8, above
	// the 0.6 threshold but below the 0.9 recovery level
	mem, actions := DetectActions(cfg, mem, eyesAt(162.45), now)

	if len(actions) != 0 {
		t.Fatalf("partial recovery must not fire, got %+v", actions)
	}

	if !mem.BlinkClosed {
		t.Fatal("latch must stay armed through a partial recovery")
	}

	// full recovery then fires
	_, actions = DetectActions(cfg, mem, eyesAt(190), now)

	if len(actions) != 1 || actions[0].Kind != facelock.Blink {
		t.Fatalf("expected blink on full recovery, got %+v", actions)
	}
}

func TestSmileFiresOnEachIncrease(t *testing.T) {

	cfg := smileConfig()
	now := time.Now()

	var mem Memory
	var actions []facelock.Action

	frames := []struct {
		noseY      float32
		wantSmiles int
	}{
		{150, 0}, // baseline curvature 0.5
		{140, 1}, // curvature 0.6, delta 0.1 fires
		{140, 0}, // plateau, no increase
		{130, 1}, // curvature 0.7 fires again
	}

	for i, f := range frames {
		mem, actions = DetectActions(cfg, mem, mouthAt(f.noseY), now)

		if len(actions) != f.wantSmiles {
			t.Fatalf("frame %d: expected %d smiles, got %d",
				i, f.wantSmiles, len(actions))
		}

		if f.wantSmiles == 1 {
			if actions[0].Kind != facelock.Smile {
				t.Errorf("frame %d: expected smile kind, got %s",
					i, actions[0].Kind)
			}
			if actions[0].Description != "smile or laugh detected" {
				t.Errorf("frame %d: unexpected description %q",
					i, actions[0].Description)
			}
		}
	}
}

func TestDegenerateGeometrySkipsMeasurement(t *testing.T) {

	cfg := blinkConfig()
	now := time.Now()

	// establish a valid eye measurement
	mem, _ := DetectActions(cfg, Memory{}, eyesAt(190), now)
	prevRatio := mem.EyeRatio

	// a detection with all landmarks at the origin has zero inter eye
	// distance, the measurement is skipped and memory is untouched
	mem, actions := DetectActions(cfg, mem, boxAt(150), now)

	if len(actions) != 0 {
		t.Fatalf("expected no actions on degenerate geometry, got %+v", actions)
	}

	if !mem.HasEyeRatio || mem.EyeRatio != prevRatio {
		t.Fatal("degenerate geometry must leave the eye memory untouched")
	}

	// the next valid closed frame latches against the last valid measurement
	mem, _ = DetectActions(cfg, mem, eyesAt(100), now)

	if !mem.BlinkClosed {
		t.Fatal("expected latch to arm against the last valid measurement")
	}

	// and recovery fires the blink
	_, actions = DetectActions(cfg, mem, eyesAt(190), now)

	if len(actions) != 1 || actions[0].Kind != facelock.Blink {
		t.Fatalf("expected blink after degenerate gap, got %+v", actions)
	}
}

func TestMemoryUpdatesEveryFrame(t *testing.T) {

	cfg := movementConfig()
	now := time.Now()

	mem, _ := DetectActions(cfg, Memory{}, boxAt(100), now)
	mem, _ = DetectActions(cfg, mem, boxAt(145), now)

	if !almostEqual(mem.Center.X, 145, 0.001) {
		t.Errorf("expected center memory 145, got %v", mem.Center.X)
	}

	// movement compares against the immediately preceding frame, so two
	// 20px steps never fire even though the total displacement is 40px
	mem, actions := DetectActions(cfg, mem, boxAt(165), now)

	if len(actions) != 0 {
		t.Fatalf("expected no action for a 20px step, got %+v", actions)
	}

	_, actions = DetectActions(cfg, mem, boxAt(185), now)

	if len(actions) != 0 {
		t.Fatalf("expected no action for a 20px step, got %+v", actions)
	}
}
