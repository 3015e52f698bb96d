package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/swdee/go-facelock/engine"
	"github.com/swdee/go-facelock/locker"
)

// StatusOverlay draws the lock state summary in the top left corner of the
// frame, each line on a black background strip
func StatusOverlay(img *gocv.Mat, frame engine.Frame, font Font) {

	lines := []string{
		fmt.Sprintf("Target: %s", frame.Target),
		fmt.Sprintf("Status: %s", frame.State),
	}

	if frame.State == locker.Locked {
		lines = append(lines,
			fmt.Sprintf("Lock Duration: %.1fs", frame.LockDuration.Seconds()),
			fmt.Sprintf("Actions Recorded: %d", frame.ActionCount),
		)
	}

	yOffset := 30

	for _, line := range lines {

		textSize := gocv.GetTextSize(line, font.Face, font.Scale,
			font.Thickness)

		// black background strip behind the text
		bg := image.Rect(10, yOffset-textSize.Y-5, 10+textSize.X+10,
			yOffset+5)
		gocv.Rectangle(img, bg, Black, -1)

		gocv.PutTextWithParams(img, line, image.Pt(15, yOffset),
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)

		yOffset += 35
	}
}

// ControlsOverlay draws the keyboard controls help in the lower left corner
// of the frame
func ControlsOverlay(img *gocv.Mat, font Font) {

	controls := []string{
		"Controls:",
		"q - Quit",
		"r - Release lock",
		"t - Change target",
		"s - Show stats",
	}

	yOffset := img.Rows() - 135

	for _, line := range controls {

		gocv.PutTextWithParams(img, line, image.Pt(15, yOffset),
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)

		yOffset += 25
	}
}
