package ctl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue <video-id>",
	Short: "Requeue missing renditions for a video",
	Long: `Enqueue transcode jobs for every rendition the video does not have yet.
Requires an admin token.

Examples:
  reelctl requeue 42`,
	Args: cobra.ExactArgs(1),
	RunE: runRequeue,
}

func runRequeue(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid video id %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()

	requeued, err := apiClient.Requeue(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to requeue video %d: %w", id, err)
	}

	if len(requeued) == 0 {
		fmt.Printf("Video %d already has every rendition\n", id)
		return nil
	}

	color.Green("✓ Requeued %s for video %d", strings.Join(requeued, ", "), id)
	return nil
}
