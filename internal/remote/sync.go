package remote

import (
	"context"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/pathconv"
	"github.com/nvialar/rekordfin/internal/resolve"
)

// Syncer replicates tracks that are missing from the share. Existence
// check and copy for one file are not atomic against concurrent writers;
// the tool targets single-operator library maintenance.
type Syncer struct {
	store     Store
	conv      *pathconv.Converter
	destRoot  string
	shareRoot string
	log       *zap.Logger
}

// NewSyncer creates a Syncer. destRoot/shareRoot drive the pure path
// mapping from playlist destination paths to share paths.
func NewSyncer(store Store, conv *pathconv.Converter, destRoot, shareRoot string, log *zap.Logger) *Syncer {
	return &Syncer{store: store, conv: conv, destRoot: destRoot, shareRoot: shareRoot, log: log}
}

// Sync checks every track against the share and copies the missing
// ones, unless checkOnly is set. Per-file failures are logged and
// counted but never abort the rest of the run. Returns the number of
// missing files found and the number successfully copied.
func (s *Syncer) Sync(ctx context.Context, tracks []resolve.Track, checkOnly bool) (missing, synced int, err error) {
	type pending struct {
		local  string
		remote string
	}

	var queue []pending
	seen := make(map[string]struct{})

	for _, t := range tracks {
		dest, ok := s.conv.Convert(t.SourcePath)
		if !ok {
			continue
		}
		remotePath := MapRemote(dest, s.destRoot, s.shareRoot)
		if _, dup := seen[remotePath]; dup {
			continue
		}
		seen[remotePath] = struct{}{}

		exists, err := s.store.Exists(ctx, remotePath)
		if err != nil {
			s.log.Warn("existence check failed",
				zap.String("remote", remotePath), zap.Error(err))
			continue
		}
		if !exists {
			queue = append(queue, pending{local: t.SourcePath, remote: remotePath})
		}
	}

	missing = len(queue)
	s.log.Info("missing files on share", zap.Int("count", missing))

	if checkOnly {
		return missing, 0, nil
	}

	var bytes int64
	for _, p := range queue {
		if err := s.store.EnsureDir(ctx, p.remote); err != nil {
			s.log.Warn("ensure remote directory",
				zap.String("remote", p.remote), zap.Error(err))
			continue
		}
		n, err := s.store.Copy(ctx, p.local, p.remote)
		if err != nil {
			s.log.Warn("sync failed",
				zap.String("local", p.local),
				zap.String("remote", p.remote),
				zap.Error(err))
			continue
		}
		bytes += n
		synced++
		s.log.Debug("synced file",
			zap.String("local", p.local), zap.String("remote", p.remote))
	}

	s.log.Info("sync finished",
		zap.Int("missing", missing),
		zap.Int("synced", synced),
		zap.String("transferred", humanize.Bytes(uint64(bytes))))
	return missing, synced, nil
}
