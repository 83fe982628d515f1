package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
)

var splitFlags struct {
	output         string
	threshold      float64
	minSceneLength float64
	catalogPath    string
	logLevel       string
}

var splitCmd = &cobra.Command{
	Use:   "split <video-file>",
	Short: "Split a video into one clip per detected scene",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		if _, err := os.Stat(videoPath); err != nil {
			return fmt.Errorf("video file not found: %s", videoPath)
		}

		return runSplit(cmd.Context(), runOptions{
			videoPath:   videoPath,
			outputDir:   splitFlags.output,
			catalogPath: splitFlags.catalogPath,
			logLevel:    splitFlags.logLevel,
			detection: entity.DetectionConfig{
				Threshold:      splitFlags.threshold,
				MinSceneLength: splitFlags.minSceneLength,
			},
		})
	},
}

func init() {
	splitCmd.Flags().StringVarP(&splitFlags.output, "output", "o", "", "output directory (default: scenes_<video>_<timestamp>)")
	splitCmd.Flags().Float64VarP(&splitFlags.threshold, "threshold", "t", entity.DefaultThreshold, "detection threshold, lower is more sensitive")
	splitCmd.Flags().Float64VarP(&splitFlags.minSceneLength, "min-scene-length", "m", entity.DefaultMinSceneLength, "minimum scene length in seconds")
	splitCmd.Flags().StringVar(&splitFlags.catalogPath, "catalog", defaultCatalogPath(), "path to the run catalog database")
	splitCmd.Flags().StringVar(&splitFlags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}
