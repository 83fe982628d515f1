package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/scenesplit/scenesplit-service/internal/domain/entity"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Prompt for video and detection parameters, then split",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			videoPath = ""
			threshold = fmt.Sprintf("%.1f", entity.DefaultThreshold)
			minLength = fmt.Sprintf("%.1f", entity.DefaultMinSceneLength)
			outputDir = ""
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Video file path").
					Value(&videoPath).
					Validate(func(s string) error {
						if _, err := os.Stat(s); err != nil {
							return fmt.Errorf("file not found: %s", s)
						}
						return nil
					}),
				huh.NewInput().
					Title("Detection threshold").
					Description("Lower is more sensitive to scene changes").
					Value(&threshold).
					Validate(validatePositiveFloat),
				huh.NewInput().
					Title("Minimum scene length (seconds)").
					Value(&minLength).
					Validate(validateNonNegativeFloat),
				huh.NewInput().
					Title("Output directory").
					Description("Leave empty for an auto-generated directory").
					Value(&outputDir),
			),
		)

		if err := form.Run(); err != nil {
			return err
		}

		thresholdVal, _ := strconv.ParseFloat(threshold, 64)
		minLengthVal, _ := strconv.ParseFloat(minLength, 64)

		return runSplit(cmd.Context(), runOptions{
			videoPath:   videoPath,
			outputDir:   outputDir,
			catalogPath: defaultCatalogPath(),
			logLevel:    "warn",
			detection: entity.DetectionConfig{
				Threshold:      thresholdVal,
				MinSceneLength: minLengthVal,
			},
		})
	},
}

func validatePositiveFloat(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	if v <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	if v < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
