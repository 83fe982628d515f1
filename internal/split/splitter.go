// Package split materializes detected scene intervals as clip files.
package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
	"github.com/scenesplit/scenesplit-service/internal/domain/port"
)

// Result summarizes one splitting batch. Skipped counts scenes under the clip
// floor, Failed counts per-clip encode errors; neither aborts the batch.
type Result struct {
	CreatedClips []string
	Skipped      int
	Failed       int
}

type Splitter struct {
	writer port.ClipWriter
	logger *zap.Logger
}

func NewSplitter(writer port.ClipWriter, logger *zap.Logger) *Splitter {
	return &Splitter{writer: writer, logger: logger}
}

// SplitScenes encodes one clip per interval into outputDir. Intervals shorter
// than the clip floor are skipped and individual encode failures are isolated;
// the only hard errors are directory creation and context cancellation.
func (s *Splitter) SplitScenes(ctx context.Context, sourcePath, outputDir string, intervals []entity.SceneInterval) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	videoName := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	result := &Result{}

	for i, iv := range intervals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if iv.Duration() < entity.MinClipDuration {
			s.logger.Info("skipping scene below clip floor",
				zap.Int("scene", i+1),
				zap.Float64("duration", iv.Duration()),
			)
			result.Skipped++
			continue
		}

		outputPath := filepath.Join(outputDir, ClipFilename(videoName, i+1, iv))
		if err := s.writer.ExtractClip(ctx, sourcePath, iv.Start, iv.End, outputPath); err != nil {
			s.logger.Warn("clip extraction failed, continuing batch",
				zap.Int("scene", i+1),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		result.CreatedClips = append(result.CreatedClips, outputPath)
	}

	return result, nil
}

// ClipFilename names a clip after its scene number and time range, e.g.
// "match_scene_003_12.0s-18.5s.mp4".
func ClipFilename(videoName string, sceneNumber int, iv entity.SceneInterval) string {
	return fmt.Sprintf("%s_scene_%03d_%.1fs-%.1fs.mp4", videoName, sceneNumber, iv.Start, iv.End)
}
