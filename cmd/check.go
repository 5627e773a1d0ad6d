package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvialar/rekordfin/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show configuration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}

		fmt.Println("Configuration status")
		fmt.Println()
		printPath("Rekordbox database", cfg.Catalog.DBPath)
		printPath("Rekordbox XML", cfg.Catalog.XMLPath)
		printPath("Source root", cfg.SourceRoot)
		fmt.Printf("  %-20s %s\n", "Destination root:", cfg.DestRoot)
		fmt.Printf("  %-20s %s\n", "Output directory:", cfg.OutputDir)
		fmt.Printf("  %-20s %s\n", "Output mode:", cfg.OutputMode)

		fmt.Println()
		if cfg.HasRemoteConfig() {
			if cfg.Remote.LocalRoot != "" {
				fmt.Printf("  Remote share: mounted at %s\n", cfg.Remote.LocalRoot)
			} else {
				fmt.Printf("  Remote share: %s bucket %q\n", cfg.Remote.Endpoint, cfg.Remote.Bucket)
			}
		} else {
			fmt.Println("  Remote share: not configured (sync unavailable)")
		}

		fmt.Println()
		if err := cfg.Validate(); err != nil {
			fmt.Println("Not ready:", err)
			return nil
		}
		fmt.Println("Ready to run: rekordfin playlists --dry-run")
		return nil
	},
}

func printPath(label, path string) {
	status := "not set"
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			status = path
		} else {
			status = path + " (missing)"
		}
	}
	fmt.Printf("  %-20s %s\n", label+":", status)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
