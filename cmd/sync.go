package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/config"
	"github.com/nvialar/rekordfin/internal/pathconv"
	"github.com/nvialar/rekordfin/internal/remote"
	"github.com/nvialar/rekordfin/internal/resolve"
)

var flagCheckOnly bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy missing audio files to the remote share",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runSync(cmd.Context(), cfg, log)
	},
}

func runSync(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if !cfg.HasRemoteConfig() {
		return errors.New("remote share is not configured")
	}

	playlists, _, err := extract(ctx, cfg, log)
	if err != nil {
		return err
	}

	conv, err := pathconv.New(cfg.SourceRoot, cfg.DestRoot, log)
	if err != nil {
		return err
	}

	store, err := newStore(cfg, log)
	if err != nil {
		return err
	}
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connect to share: %w", err)
	}

	var tracks []resolve.Track
	for _, pl := range playlists {
		tracks = append(tracks, pl.Tracks...)
	}

	syncer := remote.NewSyncer(store, conv, cfg.DestRoot, cfg.Remote.ShareRoot, log)
	missing, synced, err := syncer.Sync(ctx, tracks, flagCheckOnly)
	if err != nil {
		return err
	}

	if flagCheckOnly {
		fmt.Printf("%d files missing on share\n", missing)
	} else {
		fmt.Printf("Synced %d/%d missing files\n", synced, missing)
	}
	return nil
}

// newStore picks the share implementation: a locally mounted directory
// when remote.local_root is set, an S3-compatible endpoint otherwise.
func newStore(cfg *config.Config, log *zap.Logger) (remote.Store, error) {
	if cfg.Remote.LocalRoot != "" {
		return remote.NewDirStore(cfg.Remote.LocalRoot), nil
	}
	return remote.NewMinioStore(remote.MinioConfig{
		Endpoint:  cfg.Remote.Endpoint,
		AccessKey: cfg.Remote.AccessKey,
		SecretKey: cfg.Remote.SecretKey,
		UseSSL:    cfg.Remote.UseSSL,
		Bucket:    cfg.Remote.Bucket,
	}, log)
}

func init() {
	syncCmd.Flags().BoolVar(&flagCheckOnly, "check-only", false, "only report missing files, do not copy")
	rootCmd.AddCommand(syncCmd)
}
