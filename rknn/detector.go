// Package rknn adapts go-rknnlite model inference to the facelock
// collaborator interfaces, running RetinaFace face detection and face
// embedding models on the Rockchip NPU.
package rknn

import (
	"fmt"

	"github.com/swdee/go-rknnlite"
	"github.com/swdee/go-rknnlite/postprocess"
	"github.com/swdee/go-rknnlite/preprocess"
	"github.com/swdee/go-rknnlite/render"
	"gocv.io/x/gocv"

	facelock "github.com/swdee/go-facelock"
)

// Detector implements facelock.FaceDetector using a RetinaFace model
type Detector struct {
	rt      *rknnlite.Runtime
	proc    *postprocess.RetinaFace
	resizer *preprocess.Resizer
}

// NewDetector creates a RetinaFace detector from the RKNN compiled model
// file for the given Rockchip platform
func NewDetector(modelFile, platform string) (*Detector, error) {

	rt, err := rknnlite.NewRuntimeByPlatform(platform, modelFile)

	if err != nil {
		return nil, fmt.Errorf("error initializing detector runtime: %w", err)
	}

	return &Detector{
		rt:   rt,
		proc: postprocess.NewRetinaFace(postprocess.WiderFaceParams()),
	}, nil
}

// Detect runs face detection on the frame and returns up to maxFaces
// detections with their five point landmarks
func (d *Detector) Detect(img gocv.Mat, maxFaces int) ([]facelock.Detection, error) {

	// recreate the resizer if the frame size changed
	if d.resizer == nil || d.resizer.SrcWidth() != img.Cols() ||
		d.resizer.SrcHeight() != img.Rows() {

		d.resizer = preprocess.NewResizer(img.Cols(), img.Rows(),
			int(d.rt.InputAttrs()[0].Dims[1]),
			int(d.rt.InputAttrs()[0].Dims[2]))
	}

	// convert colorspace and letterbox the frame to the model tensor
	// input size
	rgbImg := gocv.NewMat()
	defer rgbImg.Close()
	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

	cropImg := rgbImg.Clone()
	defer cropImg.Close()
	d.resizer.LetterBoxResize(rgbImg, &cropImg, render.Black)

	outputs, err := d.rt.Inference([]gocv.Mat{cropImg})

	if err != nil {
		return nil, fmt.Errorf("detector inference failed: %w", err)
	}

	faces := d.proc.DetectFaces(outputs, d.resizer)

	if faces == nil {
		outputs.Free()
		return nil, fmt.Errorf("unsupported detector model input size")
	}

	results := faces.GetDetectResults()
	keyPoints := d.proc.GetFaceLandmarks(faces)

	dets := make([]facelock.Detection, 0, len(results))

	for i, res := range results {

		if len(dets) >= maxFaces {
			break
		}

		det := facelock.Detection{
			Box: facelock.Box{
				X1: float32(res.Box.Left),
				Y1: float32(res.Box.Top),
				X2: float32(res.Box.Right),
				Y2: float32(res.Box.Bottom),
			},
			Score: res.Probability,
			ID:    res.ID,
		}

		for j, kp := range keyPoints[i] {
			if j >= len(det.Landmarks) {
				break
			}
			det.Landmarks[j] = facelock.Point{
				X: float32(kp.X),
				Y: float32(kp.Y),
			}
		}

		dets = append(dets, det)
	}

	// free outputs allocated in C memory after post processing
	if err := outputs.Free(); err != nil {
		return nil, fmt.Errorf("error freeing outputs: %w", err)
	}

	return dets, nil
}

// Close releases the detector runtime
func (d *Detector) Close() error {
	return d.rt.Close()
}
