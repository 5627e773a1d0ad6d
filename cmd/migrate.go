package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagSkipSync bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the full migration: create playlists, then sync files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if err := runPlaylists(cmd.Context(), cfg, log); err != nil {
			return err
		}

		if flagSkipSync {
			fmt.Println("File sync skipped")
			return nil
		}
		if !cfg.HasRemoteConfig() {
			fmt.Println("Remote share not configured, file sync skipped")
			return nil
		}
		return runSync(cmd.Context(), cfg, log)
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "output directory (overrides config)")
	migrateCmd.Flags().BoolVar(&flagSkipSync, "skip-sync", false, "skip file synchronization")
	rootCmd.AddCommand(migrateCmd)
}
