// Package ffmpeg adapts the ffmpeg and ffprobe binaries to the domain ports:
// streaming frame decode, clip extraction, and clip archiving.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
	"github.com/scenesplit/scenesplit-service/internal/domain/port"
)

// SourceOpener opens videos as grayscale frame streams. Decoding runs in an
// ffmpeg child process writing raw 8-bit luminance frames to a pipe, so only
// one frame is ever buffered here.
type SourceOpener struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

func NewSourceOpener(logger *zap.Logger) *SourceOpener {
	return &SourceOpener{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      logger,
	}
}

func (o *SourceOpener) Open(ctx context.Context, videoPath string) (port.FrameSource, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("stat %s: %v: %w", videoPath, err, entity.ErrSourceUnavailable)
	}

	meta, err := o.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, o.ffmpegPath,
		"-v", "error",
		"-i", videoPath,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %v: %w", err, entity.ErrSourceUnavailable)
	}

	o.logger.Debug("frame stream opened",
		zap.String("video", videoPath),
		zap.Float64("fps", meta.FPS),
		zap.Int("total_frames", meta.TotalFrames),
	)

	return &frameStream{
		cmd:    cmd,
		reader: bufio.NewReaderSize(stdout, 1<<16),
		stderr: &stderr,
		meta:   meta,
	}, nil
}

// probe reads stream metadata with ffprobe. Packet counting is used for the
// frame total because nb_frames is absent from many containers.
func (o *SourceOpener) probe(ctx context.Context, videoPath string) (port.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, o.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=width,height,r_frame_rate,nb_read_packets",
		"-of", "default=noprint_wrappers=1",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return port.VideoMetadata{}, fmt.Errorf("ffprobe %s: %v: %w", videoPath, err, entity.ErrSourceUnavailable)
	}

	fields := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if k, v, ok := strings.Cut(strings.TrimSpace(line), "="); ok {
			fields[k] = v
		}
	}

	fps, err := parseRate(fields["r_frame_rate"])
	if err != nil {
		return port.VideoMetadata{}, fmt.Errorf("parse frame rate %q: %v: %w", fields["r_frame_rate"], err, entity.ErrSourceUnavailable)
	}

	width, _ := strconv.Atoi(fields["width"])
	height, _ := strconv.Atoi(fields["height"])
	totalFrames, _ := strconv.Atoi(fields["nb_read_packets"])

	meta := port.VideoMetadata{
		FPS:         fps,
		TotalFrames: totalFrames,
		Width:       width,
		Height:      height,
	}
	if meta.FPS <= 0 || meta.TotalFrames <= 0 || meta.Width <= 0 || meta.Height <= 0 {
		return port.VideoMetadata{}, fmt.Errorf("degenerate metadata for %s (fps=%v frames=%d %dx%d): %w",
			videoPath, meta.FPS, meta.TotalFrames, meta.Width, meta.Height, entity.ErrSourceUnavailable)
	}
	return meta, nil
}

// parseRate parses an ffprobe rational like "30000/1001" or a plain number.
func parseRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, err
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, err
		}
		if d == 0 {
			return 0, errors.New("zero denominator")
		}
		return n / d, nil
	}
	return strconv.ParseFloat(s, 64)
}

type frameStream struct {
	cmd    *exec.Cmd
	reader *bufio.Reader
	stderr *bytes.Buffer
	meta   port.VideoMetadata
	closed bool
}

func (s *frameStream) Metadata() port.VideoMetadata { return s.meta }

func (s *frameStream) Next(ctx context.Context) (*port.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pix := make([]byte, s.meta.Width*s.meta.Height)
	_, err := io.ReadFull(s.reader, pix)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read frame: %w (ffmpeg: %s)", err, s.stderr.String())
	}

	return &port.Frame{
		Pix:      pix,
		Width:    s.meta.Width,
		Height:   s.meta.Height,
		Channels: 1,
	}, nil
}

func (s *frameStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// Drain so ffmpeg is not blocked on a full pipe before exiting.
	_, _ = io.Copy(io.Discard, s.reader)
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exit: %w (%s)", err, s.stderr.String())
	}
	return nil
}
