package ctl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportGenre string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the video catalog to a JSON file",
	Long: `Export every catalog record, including rendition and thumbnail URLs.

Examples:
  reelctl export catalog.json
  reelctl export --genre=drama drama.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportGenre, "genre", "", "Only export videos of this genre")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	videos, err := apiClient.ListVideos(ctx, exportGenre)
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	if len(videos) == 0 {
		fmt.Println("No videos to export")
		return nil
	}

	bar := progressbar.Default(int64(len(videos)), "exporting")

	// The list endpoint already carries everything; the per-item fetch keeps
	// the export consistent if records change while we run.
	records := make([]Video, 0, len(videos))
	for _, v := range videos {
		fresh, err := apiClient.GetVideo(ctx, v.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch video %d: %w", v.ID, err)
		}
		records = append(records, *fresh)
		_ = bar.Add(1)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}

	color.Green("✓ Exported %d videos to %s", len(records), args[0])
	return nil
}
