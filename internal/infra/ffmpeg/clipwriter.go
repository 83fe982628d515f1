package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
)

// ClipWriter encodes scene sub-ranges into standalone H.264/AAC clips.
type ClipWriter struct {
	ffmpegPath string
	videoCodec string
	audioCodec string
	preset     string
	logger     *zap.Logger
}

func NewClipWriter(logger *zap.Logger) *ClipWriter {
	return &ClipWriter{
		ffmpegPath: "ffmpeg",
		videoCodec: "libx264",
		audioCodec: "aac",
		preset:     "fast",
		logger:     logger,
	}
}

func (w *ClipWriter) ExtractClip(ctx context.Context, sourcePath string, start, end float64, outputPath string) error {
	duration := end - start
	if duration <= 0 {
		return fmt.Errorf("interval [%v, %v): %w", start, end, entity.ErrClipWrite)
	}

	// -ss before -i for a fast seek to the nearest frame, -t for duration.
	cmd := exec.CommandContext(ctx, w.ffmpegPath,
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", sourcePath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", w.videoCodec,
		"-c:a", w.audioCodec,
		"-preset", w.preset,
		"-v", "error",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("encode %s: %v, output: %s: %w", outputPath, err, string(output), entity.ErrClipWrite)
	}

	w.logger.Debug("clip written",
		zap.String("output", outputPath),
		zap.Float64("start", start),
		zap.Float64("duration", duration),
	)
	return nil
}
