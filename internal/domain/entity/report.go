package entity

import "time"

// SceneRecord is one row of the scene breakdown in the run report.
type SceneRecord struct {
	Number   int     `json:"scene_number"`
	Start    float64 `json:"start_time"`
	End      float64 `json:"end_time"`
	Duration float64 `json:"duration"`
}

// SceneReport is the persisted record of one completed run. TotalScenes and
// CreatedClips can legitimately diverge: scenes under the clip floor are
// skipped and individual encodes may fail without aborting the batch.
type SceneReport struct {
	SourceVideo    string        `json:"source_video"`
	TotalScenes    int           `json:"total_scenes"`
	CreatedClips   int           `json:"created_clips"`
	Threshold      float64       `json:"detection_threshold"`
	MinSceneLength float64       `json:"min_scene_length"`
	Scenes         []SceneRecord `json:"scenes"`
	GeneratedAt    time.Time     `json:"timestamp"`
}

// NewSceneReport builds the report skeleton from a detection result. The
// created-clip count is filled in by the splitting stage.
func NewSceneReport(sourceVideo string, intervals []SceneInterval, cfg DetectionConfig) *SceneReport {
	records := make([]SceneRecord, len(intervals))
	for i, iv := range intervals {
		records[i] = SceneRecord{
			Number:   i + 1,
			Start:    iv.Start,
			End:      iv.End,
			Duration: iv.Duration(),
		}
	}
	return &SceneReport{
		SourceVideo:    sourceVideo,
		TotalScenes:    len(intervals),
		Threshold:      cfg.Threshold,
		MinSceneLength: cfg.MinSceneLength,
		Scenes:         records,
		GeneratedAt:    time.Now().UTC(),
	}
}
