// Package generate materializes resolved playlists as M3U files under
// the output directory, either mirroring the folder hierarchy or
// flattening it into composite file names.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/m3u"
	"github.com/nvialar/rekordfin/internal/namer"
	"github.com/nvialar/rekordfin/internal/pathconv"
	"github.com/nvialar/rekordfin/internal/resolve"
)

// Ext is the playlist file extension.
const Ext = ".m3u"

// FlatSeparator joins ancestor folder names in flat-mode file names.
const FlatSeparator = " - "

// Generator writes playlist files for resolved playlists.
type Generator struct {
	outputDir string
	flat      bool
	conv      *pathconv.Converter
	log       *zap.Logger
}

// New creates a Generator. In flat mode every playlist lands directly
// in outputDir with its ancestry encoded into the file name.
func New(outputDir string, flat bool, conv *pathconv.Converter, log *zap.Logger) *Generator {
	return &Generator{outputDir: outputDir, flat: flat, conv: conv, log: log}
}

// Clean removes any previous contents of the output directory and
// recreates it empty. Running Clean before Generate makes a run
// idempotent: stale files from removed playlists never linger.
func (g *Generator) Clean() error {
	if err := os.RemoveAll(g.outputDir); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// Generate writes one M3U file per playlist that has at least one track
// surviving path conversion. Folders and empty playlists produce no
// file. The result maps each playlist key ("path/name" nested, flat
// file base name in flat mode) to the file written for it. A write
// failure drops that one playlist and generation continues.
func (g *Generator) Generate(playlists []*resolve.Playlist) map[string]string {
	created := make(map[string]string)

	// One resolver spans the whole flat directory: composite names from
	// different branches can still collide after sanitization.
	var flatNames *namer.Resolver
	if g.flat {
		flatNames = namer.NewResolver()
	}

	for _, pl := range playlists {
		if pl.Folder {
			continue
		}

		entries := g.convertTracks(pl)
		if len(entries) == 0 {
			g.log.Warn("playlist has no valid tracks", zap.String("playlist", pl.Name))
			continue
		}

		var key, filePath string
		if g.flat {
			key = flatNames.UniqueName(flatName(pl))
			filePath = filepath.Join(g.outputDir, key+Ext)
		} else {
			key = pl.Key()
			dir := g.outputDir
			if pl.Path != "" {
				dir = filepath.Join(g.outputDir, filepath.FromSlash(pl.Path))
				if err := os.MkdirAll(dir, 0o755); err != nil {
					g.log.Error("create playlist directory",
						zap.String("dir", dir), zap.Error(err))
					continue
				}
			}
			filePath = filepath.Join(dir, pl.Name+Ext)
		}

		if err := m3u.WriteFile(filePath, entries); err != nil {
			g.log.Error("write playlist",
				zap.String("file", filePath), zap.Error(err))
			continue
		}

		created[key] = filePath
		g.log.Info("created playlist",
			zap.String("file", filePath), zap.Int("tracks", len(entries)))
	}

	return created
}

// convertTracks resolves destination paths for a playlist's tracks.
// Tracks failing validation are excluded here; the converter keeps the
// rejection record.
func (g *Generator) convertTracks(pl *resolve.Playlist) []m3u.Entry {
	var entries []m3u.Entry
	for _, t := range pl.Tracks {
		dest, ok := g.conv.Convert(t.SourcePath)
		if !ok {
			continue
		}
		entries = append(entries, m3u.Entry{Artist: t.Artist, Title: t.Title, Path: dest})
	}
	return entries
}

// flatName builds the composite base name encoding a playlist's
// ancestry, before collision resolution.
func flatName(pl *resolve.Playlist) string {
	if pl.Path == "" {
		return pl.Name
	}
	return strings.ReplaceAll(pl.Path, "/", FlatSeparator) + FlatSeparator + pl.Name
}
