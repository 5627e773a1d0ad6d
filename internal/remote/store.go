// Package remote replicates missing audio files to a remote file share.
// The share is abstracted behind Store; implementations exist for a
// MinIO/S3 bucket and for a share mounted into the local filesystem.
package remote

import (
	"context"
	"strings"
)

// Store is the minimal surface the syncer needs from a file share.
type Store interface {
	// Connect verifies the share is reachable. Called once per run.
	Connect(ctx context.Context) error
	// Exists reports whether remotePath is already present.
	Exists(ctx context.Context, remotePath string) (bool, error)
	// EnsureDir creates the parent directory chain for remotePath.
	EnsureDir(ctx context.Context, remotePath string) error
	// Copy uploads localPath to remotePath and returns the byte count.
	Copy(ctx context.Context, localPath, remotePath string) (int64, error)
}

// MapRemote rewrites a destination path to its location on the share:
// the destination root prefix is stripped and the share root substituted.
// Pure string transform, no filesystem access.
func MapRemote(destPath, destRoot, shareRoot string) string {
	rel := strings.TrimPrefix(destPath, strings.TrimSuffix(destRoot, "/")+"/")
	return strings.TrimSuffix(shareRoot, "/") + "/" + rel
}
