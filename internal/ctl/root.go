package ctl

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfg       *Config
	apiClient *Client
)

var rootCmd = &cobra.Command{
	Use:   "reelctl",
	Short: "reelctl - operate the video transcoding service",
	Long: `reelctl is the operator CLI for the transcoding service.

Inspect the catalog, export it to JSON, and requeue missing renditions.

Get started:
  reelctl status             # Check the service is up
  reelctl export out.json    # Export the catalog
  reelctl requeue 42         # Requeue missing renditions for video 42`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return err
		}

		apiClient = NewClient(cfg.BaseURL, cfg.Token, cfg.HTTPTimeout())
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(requeueCmd)
	rootCmd.AddCommand(statusCmd)
}

// commandContext returns a context cancelled by SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
