package split

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
)

// fakeWriter records extraction requests and fails on demand.
type fakeWriter struct {
	calls  []string
	failOn map[int]bool
}

func (f *fakeWriter) ExtractClip(ctx context.Context, sourcePath string, start, end float64, outputPath string) error {
	call := len(f.calls)
	f.calls = append(f.calls, outputPath)
	if f.failOn[call] {
		return fmt.Errorf("simulated encoder failure: %w", entity.ErrClipWrite)
	}
	return nil
}

func TestSplitScenesSkipsIntervalsBelowClipFloor(t *testing.T) {
	writer := &fakeWriter{}
	s := NewSplitter(writer, zap.NewNop())

	intervals := []entity.SceneInterval{
		{Start: 0, End: 4.7},
		{Start: 4.7, End: 5.0}, // 0.3s, under the 0.5s floor
		{Start: 5.0, End: 10},
	}

	result, err := s.SplitScenes(context.Background(), "/videos/input.mp4", t.TempDir(), intervals)
	require.NoError(t, err)

	assert.Len(t, result.CreatedClips, 2)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.Len(t, writer.calls, 2)
}

func TestSplitScenesIsolatesPerClipFailures(t *testing.T) {
	writer := &fakeWriter{failOn: map[int]bool{1: true}}
	s := NewSplitter(writer, zap.NewNop())

	intervals := []entity.SceneInterval{
		{Start: 0, End: 3},
		{Start: 3, End: 6},
		{Start: 6, End: 9},
	}

	result, err := s.SplitScenes(context.Background(), "/videos/input.mp4", t.TempDir(), intervals)
	require.NoError(t, err)

	assert.Len(t, result.CreatedClips, 2)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, writer.calls, 3, "failure must not stop the batch")
}

func TestSplitScenesClipNaming(t *testing.T) {
	writer := &fakeWriter{}
	s := NewSplitter(writer, zap.NewNop())
	dir := t.TempDir()

	intervals := []entity.SceneInterval{{Start: 0, End: 5.25}}
	result, err := s.SplitScenes(context.Background(), "/videos/match.mp4", dir, intervals)
	require.NoError(t, err)

	require.Len(t, result.CreatedClips, 1)
	assert.Equal(t,
		filepath.Join(dir, "match_scene_001_0.0s-5.2s.mp4"),
		result.CreatedClips[0],
	)
}

func TestSplitScenesHonorsCancellation(t *testing.T) {
	writer := &fakeWriter{}
	s := NewSplitter(writer, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SplitScenes(ctx, "/videos/input.mp4", t.TempDir(), []entity.SceneInterval{{Start: 0, End: 5}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, writer.calls)
}
