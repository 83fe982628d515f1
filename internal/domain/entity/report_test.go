package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneReportRoundTripsThroughJSON(t *testing.T) {
	intervals := []SceneInterval{
		{Start: 0, End: 12.5},
		{Start: 12.5, End: 30},
	}
	report := NewSceneReport("videos/match.mp4", intervals, DetectionConfig{
		Threshold:      25,
		MinSceneLength: 2,
	})
	report.CreatedClips = 2

	first, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded SceneReport
	require.NoError(t, json.Unmarshal(first, &decoded))

	second, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.Equal(t, first, second, "report must round-trip byte-exact")

	assert.Equal(t, "videos/match.mp4", decoded.SourceVideo)
	assert.Equal(t, 2, decoded.TotalScenes)
	assert.Equal(t, 2, decoded.CreatedClips)
	require.Len(t, decoded.Scenes, 2)
	assert.Equal(t, 1, decoded.Scenes[0].Number)
	assert.Equal(t, 12.5, decoded.Scenes[0].End)
	assert.Equal(t, 17.5, decoded.Scenes[1].Duration)
}

func TestNewSceneReportNumbersScenesFromOne(t *testing.T) {
	report := NewSceneReport("a.mp4", []SceneInterval{
		{Start: 0, End: 1},
		{Start: 1, End: 2},
		{Start: 2, End: 3},
	}, DetectionConfig{Threshold: 30, MinSceneLength: 3})

	for i, scene := range report.Scenes {
		assert.Equal(t, i+1, scene.Number)
	}
	assert.Equal(t, 3, report.TotalScenes)
	assert.Zero(t, report.CreatedClips, "clip count is filled by the split stage")
}

func TestDetectionConfigValidate(t *testing.T) {
	assert.NoError(t, DetectionConfig{Threshold: 25, MinSceneLength: 2}.Validate())
	assert.NoError(t, DetectionConfig{Threshold: 1, MinSceneLength: 0}.Validate())
	assert.ErrorIs(t, DetectionConfig{Threshold: 0, MinSceneLength: 2}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, DetectionConfig{Threshold: 25, MinSceneLength: -0.1}.Validate(), ErrInvalidConfig)
}
