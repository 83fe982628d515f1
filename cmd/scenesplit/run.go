package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/scenesplit/scenesplit-service/internal/catalog"
	"github.com/scenesplit/scenesplit-service/internal/detect"
	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
	"github.com/scenesplit/scenesplit-service/internal/domain/port"
	"github.com/scenesplit/scenesplit-service/internal/infra/ffmpeg"
	"github.com/scenesplit/scenesplit-service/internal/split"
	"github.com/scenesplit/scenesplit-service/pkg/logger"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sceneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type runOptions struct {
	videoPath   string
	outputDir   string
	catalogPath string
	logLevel    string
	detection   entity.DetectionConfig
}

// runSplit executes the full local pipeline: detect, split, report, catalog.
func runSplit(ctx context.Context, opts runOptions) error {
	log, err := logger.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	videoName := strings.TrimSuffix(filepath.Base(opts.videoPath), filepath.Ext(opts.videoPath))

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = fmt.Sprintf("scenes_%s_%s", videoName, time.Now().Format("20060102_150405"))
	}

	fmt.Println(headerStyle.Render("Analyzing " + opts.videoPath))

	opener := ffmpeg.NewSourceOpener(log)
	src, err := opener.Open(ctx, opts.videoPath)
	if err != nil {
		return err
	}

	meta := src.Metadata()
	fmt.Printf("Video info: %d frames, %.2f fps, %.2fs duration\n",
		meta.TotalFrames, meta.FPS, meta.Duration())

	detector := detect.NewDetector(opts.detection, log)
	intervals, err := detector.DetectScenes(ctx, src, consoleProgress())
	if closeErr := src.Close(); err == nil && closeErr != nil {
		log.Warn("frame source close", zap.Error(closeErr))
	}
	if err != nil {
		return err
	}

	fmt.Printf("Detected %d scenes\n\n", len(intervals))

	splitter := split.NewSplitter(ffmpeg.NewClipWriter(log), log)
	result, err := splitter.SplitScenes(ctx, opts.videoPath, outputDir, intervals)
	if err != nil {
		return err
	}

	report := entity.NewSceneReport(opts.videoPath, intervals, opts.detection)
	report.CreatedClips = len(result.CreatedClips)

	reportPath := filepath.Join(outputDir, videoName+"_scene_info.json")
	if err := writeReport(report, reportPath); err != nil {
		return err
	}

	if err := recordRun(ctx, opts.catalogPath, report, outputDir); err != nil {
		// Catalog trouble never fails a run that already produced clips.
		fmt.Println(warnStyle.Render("warning: could not record run: " + err.Error()))
	}

	printSummary(report, result, outputDir, reportPath)
	return nil
}

// consoleProgress prints scan progress at every full 10% step, matching the
// coarse cadence a terminal user wants rather than the raw 30-frame ticks.
func consoleProgress() port.ProgressSink {
	lastDecile := -1
	return port.ProgressFunc(func(pct float64) {
		decile := int(pct) / 10
		if decile > lastDecile {
			lastDecile = decile
			fmt.Printf("Analysis progress: %.1f%%\n", pct)
		}
	})
}

func writeReport(report *entity.SceneReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func recordRun(ctx context.Context, catalogPath string, report *entity.SceneReport, outputDir string) error {
	if err := os.MkdirAll(filepath.Dir(catalogPath), 0755); err != nil {
		return err
	}
	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	_, err = cat.RecordRun(ctx, report, outputDir)
	return err
}

func printSummary(report *entity.SceneReport, result *split.Result, outputDir, reportPath string) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Scene breakdown"))
	for _, s := range report.Scenes {
		fmt.Println(sceneStyle.Render(fmt.Sprintf(
			"Scene %2d: %6.1fs - %6.1fs (%5.1fs)", s.Number, s.Start, s.End, s.Duration)))
	}

	fmt.Println()
	fmt.Println(summaryStyle.Render(fmt.Sprintf("Scenes detected: %d", report.TotalScenes)))
	fmt.Println(summaryStyle.Render(fmt.Sprintf("Clips created:   %d", report.CreatedClips)))
	if result.Skipped > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Skipped (below %.1fs clip floor): %d", entity.MinClipDuration, result.Skipped)))
	}
	if result.Failed > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Failed encodes: %d", result.Failed)))
	}
	fmt.Printf("Output: %s\nReport: %s\n", outputDir, reportPath)
}
