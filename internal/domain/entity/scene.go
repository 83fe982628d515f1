package entity

// SceneInterval is one detected scene: a half-open slice of the video timeline
// in seconds. Consecutive intervals share their endpoint, so a full detection
// result tiles [0, duration] with no gaps and no overlap.
type SceneInterval struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
}

// Duration returns the interval length in seconds.
func (s SceneInterval) Duration() float64 {
	return s.End - s.Start
}

// DetectionConfig holds the tunables of the scene-change scan.
type DetectionConfig struct {
	// Threshold is the dissimilarity score above which a frame pair is
	// considered a scene change. Lower values are more sensitive.
	Threshold float64

	// MinSceneLength is the minimum accepted distance in seconds between two
	// real boundaries. Candidates closer than this to the previous accepted
	// boundary are suppressed.
	MinSceneLength float64
}

const (
	DefaultThreshold      = 25.0
	DefaultMinSceneLength = 2.0

	// MinClipDuration is the floor below which a detected scene is reported
	// but no clip file is produced.
	MinClipDuration = 0.5
)

// Validate rejects configurations the detector cannot run with.
func (c DetectionConfig) Validate() error {
	if c.Threshold <= 0 {
		return ErrInvalidConfig
	}
	if c.MinSceneLength < 0 {
		return ErrInvalidConfig
	}
	return nil
}
