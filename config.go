package facelock

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the lock engine configuration parameters.  The zero value is
// not usable, start from DefaultConfig or LoadConfig
type Config struct {
	// LockConfidence is the minimum similarity required to acquire a lock
	LockConfidence float32 `yaml:"lock_confidence"`
	// TrackingTolerance is the lower similarity threshold used to keep
	// tracking the target once locked.  Must not exceed LockConfidence
	TrackingTolerance float32 `yaml:"tracking_tolerance"`
	// LockTimeoutSeconds releases the lock after this many seconds
	// without seeing the target
	LockTimeoutSeconds float64 `yaml:"lock_timeout_seconds"`
	// MovementThreshold is the horizontal displacement in pixels that
	// triggers a movement action
	MovementThreshold float32 `yaml:"movement_threshold"`
	// BlinkThreshold is the eye aspect ratio below which the eyes are
	// considered closed
	BlinkThreshold float32 `yaml:"blink_threshold"`
	// SmileThreshold is the mouth curvature increase that triggers a
	// smile action
	SmileThreshold float32 `yaml:"smile_threshold"`
	// AssociationThreshold is the maximum pixel distance between bounding
	// box centers for two detections to be displayed as the same face
	AssociationThreshold float32 `yaml:"association_threshold"`
	// MatchDistance is the maximum cosine distance for an embedding to
	// match an enrolled identity
	MatchDistance float32 `yaml:"match_distance"`
	// MaxFaces caps the number of faces detected per frame
	MaxFaces int `yaml:"max_faces"`
	// HistoryDir is the directory session history files are written to
	HistoryDir string `yaml:"history_dir"`
}

// DefaultConfig returns the Config with default values
func DefaultConfig() Config {
	return Config{
		LockConfidence:       0.66,
		TrackingTolerance:    0.45,
		LockTimeoutSeconds:   3.0,
		MovementThreshold:    30.0,
		BlinkThreshold:       0.25,
		SmileThreshold:       0.02,
		AssociationThreshold: 50.0,
		MatchDistance:        0.34,
		MaxFaces:             5,
		HistoryDir:           "data/history",
	}
}

// LoadConfig reads a YAML config file applied over the default values
func LoadConfig(path string) (Config, error) {

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)

	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, cfg.Validate()
}

// Timeout returns the lock timeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds * float64(time.Second))
}

// Validate checks the configuration is usable
func (c Config) Validate() error {

	if c.LockConfidence <= 0 || c.LockConfidence > 1 {
		return fmt.Errorf("lock_confidence must be in (0,1], got %v",
			c.LockConfidence)
	}

	if c.TrackingTolerance <= 0 {
		return fmt.Errorf("tracking_tolerance must be positive, got %v",
			c.TrackingTolerance)
	}

	// hysteresis, acquisition must be at least as strict as tracking
	if c.TrackingTolerance > c.LockConfidence {
		return fmt.Errorf("tracking_tolerance %v must not exceed lock_confidence %v",
			c.TrackingTolerance, c.LockConfidence)
	}

	if c.LockTimeoutSeconds <= 0 {
		return fmt.Errorf("lock_timeout_seconds must be positive, got %v",
			c.LockTimeoutSeconds)
	}

	if c.MovementThreshold <= 0 || c.BlinkThreshold <= 0 || c.SmileThreshold <= 0 {
		return fmt.Errorf("action thresholds must be positive")
	}

	if c.AssociationThreshold <= 0 {
		return fmt.Errorf("association_threshold must be positive, got %v",
			c.AssociationThreshold)
	}

	if c.MaxFaces <= 0 {
		return fmt.Errorf("max_faces must be positive, got %d", c.MaxFaces)
	}

	if c.HistoryDir == "" {
		return fmt.Errorf("history_dir must not be empty")
	}

	return nil
}
