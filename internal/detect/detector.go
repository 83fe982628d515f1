package detect

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
	"github.com/scenesplit/scenesplit-service/internal/domain/port"
)

// progressInterval is how many frames pass between two progress notifications.
const progressInterval = 30

// Detector converts a frame stream into an ordered list of scene intervals.
// A Detector holds only configuration; all scan state lives inside
// DetectScenes, so one Detector may be reused across independent videos.
type Detector struct {
	cfg    entity.DetectionConfig
	logger *zap.Logger
}

func NewDetector(cfg entity.DetectionConfig, logger *zap.Logger) *Detector {
	return &Detector{cfg: cfg, logger: logger}
}

// DetectScenes runs the single forward scan. It pulls frames from src in
// presentation order, scores each against its predecessor, and accepts a new
// boundary when the score exceeds the threshold and the minimum-scene-length
// gate passes. The very first detected change is exempt from the gate: until
// a real boundary exists there is no previous scene to protect.
//
// The returned intervals are contiguous, non-overlapping, and cover
// [0, duration] exactly. progress may be nil.
func (d *Detector) DetectScenes(ctx context.Context, src port.FrameSource, progress port.ProgressSink) ([]entity.SceneInterval, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("threshold=%v min_scene_length=%v: %w", d.cfg.Threshold, d.cfg.MinSceneLength, err)
	}

	meta := src.Metadata()
	if meta.FPS <= 0 || meta.TotalFrames <= 0 {
		return nil, fmt.Errorf("fps=%v total_frames=%d: %w", meta.FPS, meta.TotalFrames, entity.ErrSourceUnavailable)
	}

	boundaries := []float64{0}
	lastBoundary := 0.0
	var prev *port.Frame
	frameIndex := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", frameIndex, err)
		}

		if prev != nil {
			score := Score(prev, frame)
			t := float64(frameIndex) / meta.FPS

			// Strict > on the threshold, >= on the spacing gate.
			if score > d.cfg.Threshold && (len(boundaries) == 1 || t-lastBoundary >= d.cfg.MinSceneLength) {
				boundaries = append(boundaries, t)
				lastBoundary = t
				d.logger.Debug("scene change detected",
					zap.Float64("timestamp", t),
					zap.Float64("score", score),
				)
			}
		}

		prev = frame
		frameIndex++

		if progress != nil && frameIndex%progressInterval == 0 {
			pct := float64(frameIndex) / float64(meta.TotalFrames) * 100
			if pct > 100 {
				pct = 100
			}
			progress.Progress(pct)
		}
	}

	// The synthetic end-of-video boundary is always appended, even when it
	// falls inside the minimum scene length of the last real boundary.
	boundaries = append(boundaries, meta.Duration())

	intervals := make([]entity.SceneInterval, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		intervals = append(intervals, entity.SceneInterval{
			Start: boundaries[i],
			End:   boundaries[i+1],
		})
	}

	d.logger.Info("scene detection finished",
		zap.Int("frames_scanned", frameIndex),
		zap.Int("scenes", len(intervals)),
	)

	return intervals, nil
}
