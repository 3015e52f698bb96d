package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	facelock "github.com/swdee/go-facelock"
	"github.com/swdee/go-facelock/engine"
	"github.com/swdee/go-facelock/enroll"
	"github.com/swdee/go-facelock/render"
	"github.com/swdee/go-facelock/rknn"
)

var (
	runDBFile     string
	runTarget     string
	runDetector   string
	runEmbedder   string
	runPlatform   string
	runDevice     int
	runHistoryDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the face locking engine on a camera feed",
	RunE:  runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDBFile, "db", "data/db/face_db.json",
		"path to the enrolled face database file")
	runCmd.Flags().StringVarP(&runTarget, "target", "t", "",
		"name of the enrolled identity to lock onto")
	runCmd.Flags().StringVar(&runDetector, "detector",
		"models/retinaface-640.rknn",
		"path to the RKNN compiled face detection model")
	runCmd.Flags().StringVar(&runEmbedder, "embedder",
		"models/arcface-112.rknn",
		"path to the RKNN compiled face embedding model")
	runCmd.Flags().StringVar(&runPlatform, "platform", "rk3588",
		"Rockchip CPU model number the models are compiled for")
	runCmd.Flags().IntVar(&runDevice, "device", 0,
		"camera device number to capture frames from")
	runCmd.Flags().StringVar(&runHistoryDir, "history-dir", "",
		"directory to write action history files to, overrides config")

	_ = runCmd.MarkFlagRequired("target")
}

func runEngine(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig()

	if err != nil {
		return err
	}

	runDBFile = envDefault(cmd, "db", "FACELOCK_DB", runDBFile)
	runHistoryDir = envDefault(cmd, "history-dir", "FACELOCK_HISTORY_DIR",
		runHistoryDir)

	if runHistoryDir != "" {
		cfg.HistoryDir = runHistoryDir
	}

	db, err := enroll.Load(runDBFile)

	if err != nil {
		return fmt.Errorf("error loading face database: %w", err)
	}

	names := db.Names()

	if len(names) == 0 {
		return fmt.Errorf("face database %s has no enrolled identities", runDBFile)
	}

	if !db.Has(runTarget) {
		return fmt.Errorf("target %q is not enrolled, known identities: %v",
			runTarget, names)
	}

	matcher, err := enroll.NewMatcher(db, cfg.MatchDistance)

	if err != nil {
		return fmt.Errorf("error building identity matcher: %w", err)
	}

	detector, err := rknn.NewDetector(runDetector, runPlatform)

	if err != nil {
		return err
	}

	defer func() {
		if err := detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}()

	embedder, err := rknn.NewEmbedder(runEmbedder, runPlatform)

	if err != nil {
		return err
	}

	defer func() {
		if err := embedder.Close(); err != nil {
			log.Printf("Error closing embedder: %v", err)
		}
	}()

	eng, err := engine.New(cfg, detector, embedder, matcher, runTarget)

	if err != nil {
		return err
	}

	cam, err := gocv.OpenVideoCapture(runDevice)

	if err != nil {
		return fmt.Errorf("error opening camera device %d: %w", runDevice, err)
	}

	defer cam.Close()

	window := gocv.NewWindow("Face Lock")
	defer window.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = frameLoop(ctx, eng, cam, window, names)

	// release any held lock so the history file is finalized
	if closeErr := eng.Close(time.Now()); closeErr != nil {
		log.Printf("Error finalizing session: %v", closeErr)
	}

	return err
}

// frameLoop captures camera frames and runs them through the engine until
// the user quits or the context is cancelled
func frameLoop(ctx context.Context, eng *engine.Engine, cam *gocv.VideoCapture,
	window *gocv.Window, names []string) error {

	img := gocv.NewMat()
	defer img.Close()

	font := render.DefaultFont()
	statusFont := render.StatusFont()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if ok := cam.Read(&img); !ok {
			return fmt.Errorf("camera device closed")
		}

		if img.Empty() {
			continue
		}

		frame, err := eng.Process(img, time.Now())

		if err != nil {
			return fmt.Errorf("error processing frame: %w", err)
		}

		render.FaceBoxes(&img, frame, font, 2)
		render.FaceLandmarks(&img, frame, 2)
		render.StatusOverlay(&img, frame, statusFont)
		render.ControlsOverlay(&img, font)

		window.IMShow(img)

		switch window.WaitKey(1) {
		case 'q':
			return nil

		case 'r':
			if err := eng.Release(time.Now()); err != nil {
				log.Printf("Error releasing lock: %v", err)
			}

		case 't':
			next := nextTarget(names, eng.Target())
			log.Printf("Changing target to %s", next)

			if err := eng.ChangeTarget(next, time.Now()); err != nil {
				log.Printf("Error changing target: %v", err)
			}

		case 's':
			printStats(eng)
		}
	}
}

// printStats logs the current lock state and session details
func printStats(eng *engine.Engine) {

	log.Printf("Target: %s, state: %s", eng.Target(), eng.State())

	if sess := eng.Session(); sess != nil {
		log.Printf("Session %s: %d actions recorded, history file %s",
			sess.ID, len(sess.Actions), sess.HistoryPath())
	}
}

// nextTarget returns the identity following current in the sorted list of
// enrolled names, wrapping around at the end
func nextTarget(names []string, current string) string {

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	for i, name := range sorted {
		if name == current {
			return sorted[(i+1)%len(sorted)]
		}
	}

	return sorted[0]
}

// envDefault returns the value of the environment variable key when it is
// set and the flag was left at its default, so explicit flags always win
// over the environment
func envDefault(cmd *cobra.Command, flag, key, current string) string {

	if cmd.Flags().Changed(flag) {
		return current
	}

	if v := os.Getenv(key); v != "" {
		return v
	}

	return current
}

// loadConfig reads the engine configuration from the file given with the
// config flag, the FACELOCK_CONFIG environment variable, or facelock.yaml
// in the working directory, falling back to built in defaults
func loadConfig() (facelock.Config, error) {

	path := cfgFile

	if path == "" {
		path = os.Getenv("FACELOCK_CONFIG")
	}

	if path == "" {
		if _, err := os.Stat("facelock.yaml"); err == nil {
			path = "facelock.yaml"
		}
	}

	if path == "" {
		cfg := facelock.DefaultConfig()
		return cfg, cfg.Validate()
	}

	return facelock.LoadConfig(path)
}
