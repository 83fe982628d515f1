package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "scenesplit",
	Short: "Detect scene changes in a video and split it into clips",
	Long: `scenesplit analyzes a video frame by frame, locates abrupt visual
changes with a histogram-correlation detector, and cuts the video into one
clip per scene. Each run writes a scene-info JSON report next to the clips
and is recorded in a local run catalog.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scenesplit version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(runsCmd)
}

// defaultCatalogPath places the run catalog under the user config dir,
// falling back to the working directory.
func defaultCatalogPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "scenesplit.db"
	}
	return filepath.Join(dir, "scenesplit", "catalog.db")
}
