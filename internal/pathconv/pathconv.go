// Package pathconv rewrites track paths from the source library layout
// to the destination layout used inside generated playlist files.
package pathconv

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Converter validates that a source path lies under the source root and
// rewrites it relative to the destination root. Paths that resolve
// outside the root (including through symlinks) are rejected and
// remembered for diagnostics.
type Converter struct {
	sourceRoot string // canonical absolute form
	destRoot   string
	rejected   map[string]struct{}
	log        *zap.Logger
}

// New creates a Converter. sourceRoot must exist; it is canonicalized
// (absolute, symlinks resolved) once up front.
func New(sourceRoot, destRoot string, log *zap.Logger) (*Converter, error) {
	abs, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	return &Converter{
		sourceRoot: canonical,
		destRoot:   strings.TrimSuffix(destRoot, "/"),
		rejected:   make(map[string]struct{}),
		log:        log,
	}, nil
}

// Convert returns the destination path for sourcePath, or ok=false if
// the path does not resolve to a descendant of the source root. The
// destination uses forward slashes regardless of host platform, since
// the media server consuming the playlist expects POSIX-style paths.
// Resolution errors are treated as rejections, never propagated.
func (c *Converter) Convert(sourcePath string) (string, bool) {
	if sourcePath == "" {
		return c.reject(sourcePath, "empty path")
	}

	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return c.reject(sourcePath, err.Error())
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return c.reject(sourcePath, err.Error())
	}

	rel, err := filepath.Rel(c.sourceRoot, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return c.reject(sourcePath, "outside source root")
	}

	return c.destRoot + "/" + filepath.ToSlash(rel), true
}

func (c *Converter) reject(sourcePath, reason string) (string, bool) {
	// Record the original input, not the resolved form, so diagnostics
	// match what the catalog actually contains.
	c.rejected[sourcePath] = struct{}{}
	c.log.Warn("path rejected",
		zap.String("path", sourcePath),
		zap.String("reason", reason))
	return "", false
}

// Rejected returns a sorted snapshot of all rejected input paths.
// Mutating the returned slice never affects the Converter.
func (c *Converter) Rejected() []string {
	out := make([]string, 0, len(c.rejected))
	for p := range c.rejected {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
