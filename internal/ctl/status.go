package ctl

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reelforge/reelforge/internal/catalog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service health and catalog completeness",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	if err := apiClient.Health(ctx); err != nil {
		color.Red("✗ Service unreachable at %s: %v", cfg.BaseURL, err)
		return err
	}
	color.Green("✓ Service healthy at %s", cfg.BaseURL)

	videos, err := apiClient.ListVideos(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list videos: %w", err)
	}

	complete := 0
	for _, v := range videos {
		if len(v.Renditions) == len(catalog.AllResolutions) {
			complete++
		}
	}

	fmt.Printf("Videos: %d total, %d with all renditions, %d pending\n",
		len(videos), complete, len(videos)-complete)
	return nil
}
