// Package catalog defines the records produced by a DJ catalog source
// (Rekordbox database or XML export) before hierarchy resolution.
package catalog

import "context"

// RootID is the sentinel parent ID for top-level nodes.
const RootID = "root"

// Kind discriminates catalog entries. It is decided once at ingestion;
// downstream code never probes raw catalog attributes.
type Kind int

const (
	KindPlaylist Kind = iota // ordinary playlist with an explicit track list
	KindFolder               // container, never carries tracks
	KindSmart                // membership computed from a saved query
)

func (k Kind) String() string {
	switch k {
	case KindPlaylist:
		return "playlist"
	case KindFolder:
		return "folder"
	case KindSmart:
		return "smart"
	}
	return "unknown"
}

// Node is one raw catalog entry (folder or leaf playlist).
type Node struct {
	ID       string
	ParentID string // another node's ID, or RootID
	Name     string
	Kind     Kind
	Deleted  bool

	// TrackIDs holds ordered content references for KindPlaylist.
	TrackIDs []string

	// SmartQuery holds the saved query definition for KindSmart.
	SmartQuery string
}

// Track is one entry of the catalog's track table.
type Track struct {
	ID      string
	Title   string
	Artist  string
	Album   string
	Genre   string
	BPM     float64
	Rating  int
	Path    string // absolute source file path, "" when the catalog has none
	Deleted bool
}

// Catalog is a full snapshot of a catalog source.
type Catalog struct {
	// Nodes in catalog iteration order. Resolution follows this order,
	// so re-reading the same snapshot reproduces identical results.
	Nodes []Node

	// Tracks indexed by catalog track ID.
	Tracks map[string]Track

	// Order lists track IDs in catalog iteration order, used when a
	// smart playlist is evaluated against the whole track table.
	Order []string
}

// Source reads a catalog snapshot.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
	Close() error
}
