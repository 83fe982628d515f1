package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scenesplit/scenesplit-service/internal/catalog"
)

var runsFlags struct {
	limit       int
	catalogPath string
	scenes      bool
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent scene-split runs from the local catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(runsFlags.catalogPath)
		if err != nil {
			return err
		}
		defer cat.Close()

		runs, err := cat.ListRuns(cmd.Context(), runsFlags.limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		for _, r := range runs {
			fmt.Println(headerStyle.Render(fmt.Sprintf("#%d  %s", r.ID, r.SourceVideo)))
			fmt.Printf("  %s  scenes=%d clips=%d threshold=%.1f min_len=%.1fs\n  out: %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.TotalScenes, r.CreatedClips, r.Threshold, r.MinSceneLength, r.OutputDir)

			if runsFlags.scenes {
				scenes, err := cat.RunScenes(cmd.Context(), r.ID)
				if err != nil {
					return err
				}
				for _, s := range scenes {
					fmt.Println(sceneStyle.Render(fmt.Sprintf(
						"    scene %2d: %6.1fs - %6.1fs (%5.1fs)", s.Number, s.Start, s.End, s.Duration)))
				}
			}
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 10, "maximum number of runs to show")
	runsCmd.Flags().StringVar(&runsFlags.catalogPath, "catalog", defaultCatalogPath(), "path to the run catalog database")
	runsCmd.Flags().BoolVar(&runsFlags.scenes, "scenes", false, "include the scene breakdown of each run")
}
