// Package resolve turns the flat, unordered, possibly cyclic node list
// of a catalog snapshot into playlists with collision-free names and
// materialized folder paths.
package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/catalog"
	"github.com/nvialar/rekordfin/internal/catalog/smartlist"
	"github.com/nvialar/rekordfin/internal/namer"
)

// Track is a playlist member ready for generation.
type Track struct {
	Title      string
	Artist     string
	SourcePath string
	Origin     string // original name of the playlist the track came from
}

// Playlist is a catalog node after naming and path resolution.
// Name is unique among siblings sharing the same Path; Path is the
// slash-joined chain of ancestor resolved names ("" at root level).
type Playlist struct {
	ID       string
	Name     string
	Path     string
	Folder   bool
	Tracks   []Track
	Children []*Playlist
}

// Key returns "path/name", or just the name at root level.
func (p *Playlist) Key() string {
	if p.Path == "" {
		return p.Name
	}
	return p.Path + "/" + p.Name
}

// Stats summarizes one resolution pass.
type Stats struct {
	Resolved      int // playlists and folders in the result
	DeletedNodes  int // catalog entries dropped by the deleted flag
	DeletedTracks int // track references dropped by the deleted flag
	Orphaned      int // nodes excluded because no ancestor chain reaches root
}

// Resolver owns the per-scope name resolvers and path memoization for
// one resolution pass. Build a fresh one per catalog snapshot.
type Resolver struct {
	log *zap.Logger

	nodes  map[string]*catalog.Node
	scopes map[string]*namer.Resolver
	memo   map[string][]string
}

// New creates a Resolver.
func New(log *zap.Logger) *Resolver {
	return &Resolver{
		log:    log,
		scopes: make(map[string]*namer.Resolver),
		memo:   make(map[string][]string),
	}
}

// Resolve computes collision-free names and paths for every live catalog
// node. Folders and empty playlists are retained so that sibling naming
// accounts for them; the generator decides later what to materialize.
// Nodes whose ancestor chain is broken (parent deleted or unknown) are
// excluded. A single bad record never aborts the rest of the pass.
func (r *Resolver) Resolve(cat *catalog.Catalog) ([]*Playlist, Stats) {
	var stats Stats

	// Deleted nodes are dropped up front and their IDs become invalid
	// as parents, so children of a deleted folder count as orphaned.
	r.nodes = make(map[string]*catalog.Node, len(cat.Nodes))
	order := make([]string, 0, len(cat.Nodes))
	for i := range cat.Nodes {
		n := &cat.Nodes[i]
		if n.Deleted {
			stats.DeletedNodes++
			r.log.Debug("skipping deleted catalog entry",
				zap.String("id", n.ID), zap.String("name", n.Name))
			continue
		}
		r.nodes[n.ID] = n
		order = append(order, n.ID)
	}

	resolved := make([]*Playlist, 0, len(order))
	byID := make(map[string]*Playlist, len(order))

	for _, id := range order {
		node := r.nodes[id]

		components := r.pathComponents(id, map[string]struct{}{})
		if components == nil {
			stats.Orphaned++
			r.log.Warn("excluding unreachable playlist",
				zap.String("id", node.ID),
				zap.String("name", node.Name),
				zap.String("parent", node.ParentID))
			continue
		}

		pl := &Playlist{
			ID:     node.ID,
			Name:   components[len(components)-1],
			Path:   strings.Join(components[:len(components)-1], "/"),
			Folder: node.Kind == catalog.KindFolder,
		}
		pl.Tracks = r.collectTracks(node, cat, &stats)

		resolved = append(resolved, pl)
		byID[node.ID] = pl
	}

	// Children are structural only; generation walks the flat list.
	for _, pl := range resolved {
		if parent, ok := byID[r.nodes[pl.ID].ParentID]; ok {
			parent.Children = append(parent.Children, pl)
		}
	}

	stats.Resolved = len(resolved)
	return resolved, stats
}

// pathComponents returns the resolved name chain from the root down to
// the node, or nil when the node has no valid ancestor chain. visited
// guards the current call chain: a node that turns out to be its own
// ancestor resolves with an empty parent chain instead of recursing
// forever. Results are memoized across top-level calls.
func (r *Resolver) pathComponents(id string, visited map[string]struct{}) []string {
	if got, ok := r.memo[id]; ok {
		return got
	}
	if _, ok := visited[id]; ok {
		return []string{}
	}
	visited[id] = struct{}{}

	node, ok := r.nodes[id]
	if !ok {
		return nil
	}

	var parent []string
	if node.ParentID == catalog.RootID {
		parent = []string{}
	} else {
		parent = r.pathComponents(node.ParentID, visited)
		if parent == nil {
			return nil
		}
	}

	// Every node with an empty parent chain lands at the top level, by
	// ParentID or by a broken ancestor chain, so they all claim names
	// from the root scope. A separate scope for cycle-broken nodes would
	// let them silently shadow a root playlist of the same name.
	scopeKey := strings.Join(parent, "/")
	if len(parent) == 0 {
		scopeKey = catalog.RootID
	}
	name := r.scope(scopeKey).UniqueName(node.Name)

	components := append(append([]string{}, parent...), name)
	r.memo[id] = components
	return components
}

// scope returns the name resolver for one parent path, creating it on
// first use. Scopes are never shared: this is what makes names unique
// per folder level rather than globally.
func (r *Resolver) scope(key string) *namer.Resolver {
	res, ok := r.scopes[key]
	if !ok {
		res = namer.NewResolver()
		r.scopes[key] = res
	}
	return res
}

// collectTracks gathers a node's members. Folders carry none. Smart
// playlists evaluate their saved query against the full track table;
// an unparseable query yields zero tracks rather than failing the pass.
func (r *Resolver) collectTracks(node *catalog.Node, cat *catalog.Catalog, stats *Stats) []Track {
	switch node.Kind {
	case catalog.KindFolder:
		return nil

	case catalog.KindSmart:
		rules, err := smartlist.Parse(node.SmartQuery)
		if err != nil {
			r.log.Warn("unparseable smart playlist query",
				zap.String("name", node.Name), zap.Error(err))
			return nil
		}
		var tracks []Track
		for _, tid := range cat.Order {
			t := cat.Tracks[tid]
			if t.Deleted {
				continue
			}
			if rules.Match(t) {
				tracks = append(tracks, newTrack(t, node.Name))
			}
		}
		return tracks

	default:
		var tracks []Track
		for _, tid := range node.TrackIDs {
			t, ok := cat.Tracks[tid]
			if !ok {
				// Dangling content reference, skipped silently.
				continue
			}
			if t.Deleted {
				stats.DeletedTracks++
				continue
			}
			tracks = append(tracks, newTrack(t, node.Name))
		}
		return tracks
	}
}

func newTrack(t catalog.Track, origin string) Track {
	artist := t.Artist
	if artist == "" {
		artist = "Unknown"
	}
	title := t.Title
	if title == "" {
		title = "Unknown"
	}
	return Track{
		Title:      title,
		Artist:     artist,
		SourcePath: t.Path,
		Origin:     origin,
	}
}
