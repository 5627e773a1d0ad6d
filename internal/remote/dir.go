package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirStore targets a share already mounted into the local filesystem
// (NFS, SMB mount, USB drive). Remote paths are joined under the mount
// root.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at a mounted share directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Connect verifies the mount root is an existing directory.
func (s *DirStore) Connect(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("share root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("share root %s is not a directory", s.root)
	}
	return nil
}

// Exists reports whether the file is present under the mount.
func (s *DirStore) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := os.Stat(s.local(remotePath))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureDir creates the parent directory chain for remotePath.
func (s *DirStore) EnsureDir(ctx context.Context, remotePath string) error {
	return os.MkdirAll(filepath.Dir(s.local(remotePath)), 0o755)
}

// Copy copies the local file onto the share. A partial file left by a
// failed copy is removed.
func (s *DirStore) Copy(ctx context.Context, localPath, remotePath string) (int64, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	target := s.local(remotePath)
	dst, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create destination: %w", err)
	}

	n, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		os.Remove(target)
		return 0, fmt.Errorf("copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(target)
		return 0, fmt.Errorf("close destination: %w", err)
	}
	return n, nil
}

func (s *DirStore) local(remotePath string) string {
	return filepath.Join(s.root, filepath.FromSlash(remotePath))
}
