// Package cmd implements the rekordfin command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/catalog"
	"github.com/nvialar/rekordfin/internal/catalog/rekordbox"
	"github.com/nvialar/rekordfin/internal/config"
	"github.com/nvialar/rekordfin/internal/logging"
	"github.com/nvialar/rekordfin/internal/resolve"
)

var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "rekordfin",
	Short: "Migrate Rekordbox playlists to a Jellyfin library",
	Long: `rekordfin reads a Rekordbox catalog (master.db or XML export),
rebuilds its playlist folder hierarchy with collision-safe names,
rewrites track paths for the media server and writes M3U playlist
files. Missing audio files can be replicated to a remote share.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to an extra config file")
}

// setup loads and validates configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	} else if flagQuiet {
		level = "warn"
	}
	return cfg, logging.New(level, cfg.Log.Path), nil
}

// openSource connects to the configured catalog, preferring the
// database over an XML export when both are set.
func openSource(cfg *config.Config, log *zap.Logger) (catalog.Source, error) {
	if cfg.Catalog.DBPath != "" {
		if _, err := os.Stat(cfg.Catalog.DBPath); err == nil {
			return rekordbox.OpenDB(cfg.Catalog.DBPath, log)
		}
	}
	if cfg.Catalog.XMLPath != "" {
		if _, err := os.Stat(cfg.Catalog.XMLPath); err == nil {
			return rekordbox.OpenXML(cfg.Catalog.XMLPath, log)
		}
	}
	return nil, errors.New("no valid Rekordbox database or XML file found")
}

// extract loads the catalog and resolves the playlist tree. Returning
// zero playlists is one of the two fatal conditions: there is nothing
// meaningful to produce.
func extract(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]*resolve.Playlist, resolve.Stats, error) {
	src, err := openSource(cfg, log)
	if err != nil {
		return nil, resolve.Stats{}, err
	}
	defer src.Close()

	cat, err := src.Load(ctx)
	if err != nil {
		return nil, resolve.Stats{}, fmt.Errorf("load catalog: %w", err)
	}

	playlists, stats := resolve.New(log).Resolve(cat)
	if len(playlists) == 0 {
		return nil, stats, errors.New("no playlists found in catalog")
	}

	log.Info("catalog resolved",
		zap.Int("playlists", stats.Resolved),
		zap.Int("deleted_skipped", stats.DeletedNodes),
		zap.Int("deleted_tracks_skipped", stats.DeletedTracks),
		zap.Int("orphaned", stats.Orphaned))
	return playlists, stats, nil
}
