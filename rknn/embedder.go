package rknn

import (
	"fmt"
	"image"

	"github.com/swdee/go-rknnlite"
	"github.com/swdee/go-rknnlite/postprocess/reid"
	"gocv.io/x/gocv"

	facelock "github.com/swdee/go-facelock"
)

// Embedder implements facelock.FaceEmbedder using a face embedding model
// such as ArcFace compiled for the NPU
type Embedder struct {
	rt *rknnlite.Runtime
}

// NewEmbedder creates a face embedder from the RKNN compiled model file
// for the given Rockchip platform
func NewEmbedder(modelFile, platform string) (*Embedder, error) {

	rt, err := rknnlite.NewRuntimeByPlatform(platform, modelFile)

	if err != nil {
		return nil, fmt.Errorf("error initializing embedder runtime: %w", err)
	}

	return &Embedder{
		rt: rt,
	}, nil
}

// Embed aligns the detected face to the embedding model input size and
// returns its L2 normalized embedding vector
func (e *Embedder) Embed(img gocv.Mat, det facelock.Detection) ([]float32, error) {

	size := image.Pt(int(e.rt.InputAttrs()[0].Dims[1]),
		int(e.rt.InputAttrs()[0].Dims[2]))

	aligned, err := AlignFace(img, det.Landmarks, size)

	if err != nil {
		return nil, fmt.Errorf("error aligning face: %w", err)
	}

	defer aligned.Close()

	rgbImg := gocv.NewMat()
	defer rgbImg.Close()
	gocv.CvtColor(aligned, &rgbImg, gocv.ColorBGRToRGB)

	outputs, err := e.rt.Inference([]gocv.Mat{rgbImg})

	if err != nil {
		return nil, fmt.Errorf("embedder inference failed: %w", err)
	}

	// copy the embedding out of the C allocated output buffer before
	// freeing it
	buf := outputs.Output[0].BufFloat
	embedding := make([]float32, len(buf))
	copy(embedding, buf)

	if err := outputs.Free(); err != nil {
		return nil, fmt.Errorf("error freeing outputs: %w", err)
	}

	return reid.NormalizeVec(embedding), nil
}

// Close releases the embedder runtime
func (e *Embedder) Close() error {
	return e.rt.Close()
}
