package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/config"
	"github.com/nvialar/rekordfin/internal/generate"
	"github.com/nvialar/rekordfin/internal/pathconv"
)

var (
	flagOutputDir string
	flagFlat      bool
	flagDryRun    bool
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Create playlist files from the Rekordbox catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runPlaylists(cmd.Context(), cfg, log)
	},
}

func runPlaylists(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if flagFlat {
		cfg.OutputMode = "flat"
	}

	playlists, _, err := extract(ctx, cfg, log)
	if err != nil {
		return err
	}

	conv, err := pathconv.New(cfg.SourceRoot, cfg.DestRoot, log)
	if err != nil {
		return err
	}

	if flagDryRun {
		fmt.Println("Dry run - no files will be created")
		total := 0
		for _, pl := range playlists {
			if pl.Folder {
				continue
			}
			valid := 0
			for _, t := range pl.Tracks {
				if _, ok := conv.Convert(t.SourcePath); ok {
					valid++
				}
			}
			total += valid
			fmt.Printf("  %s (%d tracks)\n", pl.Key(), valid)
		}
		fmt.Printf("Total: %d valid tracks\n", total)
		return nil
	}

	gen := generate.New(cfg.OutputDir, cfg.OutputMode == "flat", conv, log)
	if err := gen.Clean(); err != nil {
		return err
	}
	created := gen.Generate(playlists)

	if rejected := conv.Rejected(); len(rejected) > 0 {
		log.Warn("paths outside source root", zap.Int("count", len(rejected)))
		for _, p := range rejected {
			log.Debug("rejected path", zap.String("path", p))
		}
	}

	log.Info("playlist creation finished",
		zap.Int("written", len(created)),
		zap.String("output", cfg.OutputDir))
	fmt.Printf("Created %d playlist files in %s\n", len(created), cfg.OutputDir)
	return nil
}

func init() {
	playlistsCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "output directory (overrides config)")
	playlistsCmd.Flags().BoolVar(&flagFlat, "flat", false, "write all playlists into one directory")
	playlistsCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be created without writing files")
	rootCmd.AddCommand(playlistsCmd)
}
