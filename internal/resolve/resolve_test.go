package resolve

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/catalog"
)

func newTestCatalog(nodes []catalog.Node, tracks ...catalog.Track) *catalog.Catalog {
	cat := &catalog.Catalog{Nodes: nodes, Tracks: make(map[string]catalog.Track)}
	for _, t := range tracks {
		cat.Tracks[t.ID] = t
		cat.Order = append(cat.Order, t.ID)
	}
	return cat
}

func find(t *testing.T, playlists []*Playlist, id string) *Playlist {
	t.Helper()
	for _, pl := range playlists {
		if pl.ID == id {
			return pl
		}
	}
	t.Fatalf("playlist %s not resolved", id)
	return nil
}

func TestResolveHierarchy(t *testing.T) {
	cat := newTestCatalog([]catalog.Node{
		{ID: "f1", ParentID: catalog.RootID, Name: "Electronic", Kind: catalog.KindFolder},
		{ID: "p1", ParentID: "f1", Name: "Deep House", Kind: catalog.KindPlaylist, TrackIDs: []string{"t1"}},
		{ID: "p2", ParentID: catalog.RootID, Name: "Hip Hop", Kind: catalog.KindPlaylist, TrackIDs: []string{"t2"}},
	},
		catalog.Track{ID: "t1", Title: "One", Artist: "A", Path: "/crates/a.mp3"},
		catalog.Track{ID: "t2", Title: "Two", Artist: "B", Path: "/crates/b.mp3"},
	)

	playlists, stats := New(zap.NewNop()).Resolve(cat)
	if stats.Resolved != 3 {
		t.Fatalf("resolved %d playlists, want 3", stats.Resolved)
	}

	folder := find(t, playlists, "f1")
	if folder.Name != "Electronic" || folder.Path != "" || !folder.Folder {
		t.Errorf("folder = %+v", folder)
	}
	if len(folder.Children) != 1 || folder.Children[0].ID != "p1" {
		t.Errorf("folder children = %v", folder.Children)
	}

	nested := find(t, playlists, "p1")
	if nested.Path != "Electronic" || nested.Name != "Deep House" {
		t.Errorf("nested playlist path/name = %q/%q", nested.Path, nested.Name)
	}
	if nested.Key() != "Electronic/Deep House" {
		t.Errorf("key = %q", nested.Key())
	}
	if len(nested.Tracks) != 1 || nested.Tracks[0].Title != "One" {
		t.Errorf("nested tracks = %v", nested.Tracks)
	}

	top := find(t, playlists, "p2")
	if top.Path != "" || top.Name != "Hip Hop" {
		t.Errorf("top playlist path/name = %q/%q", top.Path, top.Name)
	}
}

func TestResolveSiblingCollision(t *testing.T) {
	// "Mix?" sanitizes to "Mix": the empty playlist already occupies
	// the slot, so the second sibling gets a suffix. Empty playlists
	// are retained precisely for this bookkeeping.
	cat := newTestCatalog([]catalog.Node{
		{ID: "p1", ParentID: catalog.RootID, Name: "Mix", Kind: catalog.KindPlaylist},
		{ID: "p2", ParentID: catalog.RootID, Name: "Mix?", Kind: catalog.KindPlaylist, TrackIDs: []string{"t1"}},
	}, catalog.Track{ID: "t1", Title: "One", Artist: "A", Path: "/crates/a.mp3"})

	playlists, _ := New(zap.NewNop()).Resolve(cat)

	if got := find(t, playlists, "p1").Name; got != "Mix" {
		t.Errorf("first sibling = %q", got)
	}
	if got := find(t, playlists, "p2").Name; got != "Mix (1)" {
		t.Errorf("second sibling = %q, want %q", got, "Mix (1)")
	}
}

func TestResolveScopeIsolation(t *testing.T) {
	// The same original name under two different parents stays clean in
	// both scopes.
	cat := newTestCatalog([]catalog.Node{
		{ID: "f1", ParentID: catalog.RootID, Name: "House", Kind: catalog.KindFolder},
		{ID: "f2", ParentID: catalog.RootID, Name: "Techno", Kind: catalog.KindFolder},
		{ID: "p1", ParentID: "f1", Name: "Favorites", Kind: catalog.KindPlaylist},
		{ID: "p2", ParentID: "f2", Name: "Favorites", Kind: catalog.KindPlaylist},
	})

	playlists, _ := New(zap.NewNop()).Resolve(cat)

	a, b := find(t, playlists, "p1"), find(t, playlists, "p2")
	if a.Name != "Favorites" || b.Name != "Favorites" {
		t.Errorf("cross-scope interference: %q vs %q", a.Name, b.Name)
	}
	if a.Path == b.Path {
		t.Errorf("scopes collapsed: both under %q", a.Path)
	}
}

func TestResolveCycle(t *testing.T) {
	// A and B are each other's parent. Resolution must terminate; the
	// cyclic branch resolves with an empty parent chain.
	cat := newTestCatalog([]catalog.Node{
		{ID: "a", ParentID: "b", Name: "A", Kind: catalog.KindFolder},
		{ID: "b", ParentID: "a", Name: "B", Kind: catalog.KindFolder},
		{ID: "p", ParentID: "a", Name: "Inside", Kind: catalog.KindPlaylist},
	})

	playlists, stats := New(zap.NewNop()).Resolve(cat)
	if stats.Resolved != 3 {
		t.Fatalf("resolved %d, want 3", stats.Resolved)
	}

	// "a" is resolved first, so the back-edge is detected while walking
	// its parent "b": "b" gets the empty ancestor chain and "a" hangs
	// off it.
	b := find(t, playlists, "b")
	if b.Path != "" {
		t.Errorf("cycle-broken node path = %q, want empty", b.Path)
	}
	a := find(t, playlists, "a")
	if a.Path != "B" {
		t.Errorf("cycle member path = %q, want %q", a.Path, "B")
	}
	if p := find(t, playlists, "p"); p.Path != "B/A" {
		t.Errorf("descendant path = %q, want %q", p.Path, "B/A")
	}
}

func TestResolveCycleSharesRootScope(t *testing.T) {
	// A cycle-broken node ends up at the top level, so it competes for
	// names with genuine root-level playlists. Without a shared scope the
	// two "Hip Hop" entries below would both resolve to path="" with the
	// same name and one playlist file would overwrite the other.
	cat := newTestCatalog([]catalog.Node{
		{ID: "r", ParentID: catalog.RootID, Name: "Hip Hop", Kind: catalog.KindPlaylist},
		{ID: "a", ParentID: "b", Name: "A", Kind: catalog.KindFolder},
		{ID: "b", ParentID: "a", Name: "Hip Hop", Kind: catalog.KindFolder},
	})

	playlists, _ := New(zap.NewNop()).Resolve(cat)

	if got := find(t, playlists, "r").Name; got != "Hip Hop" {
		t.Errorf("root playlist = %q", got)
	}
	broken := find(t, playlists, "b")
	if broken.Path != "" || broken.Name != "Hip Hop (1)" {
		t.Errorf("cycle-broken node = %q/%q, want \"\"/%q", broken.Path, broken.Name, "Hip Hop (1)")
	}

	seen := make(map[string]string)
	for _, pl := range playlists {
		if pl.Path != "" {
			continue
		}
		if prev, dup := seen[pl.Name]; dup {
			t.Fatalf("top-level name %q claimed by both %s and %s", pl.Name, prev, pl.ID)
		}
		seen[pl.Name] = pl.ID
	}
}

func TestResolveDeletedFiltering(t *testing.T) {
	cat := newTestCatalog([]catalog.Node{
		{ID: "gone", ParentID: catalog.RootID, Name: "Old", Kind: catalog.KindFolder, Deleted: true},
		{ID: "orphan", ParentID: "gone", Name: "Child", Kind: catalog.KindPlaylist},
		{ID: "keep", ParentID: catalog.RootID, Name: "Keep", Kind: catalog.KindPlaylist, TrackIDs: []string{"t1", "t2", "missing"}},
	},
		catalog.Track{ID: "t1", Title: "One", Artist: "A", Path: "/crates/a.mp3"},
		catalog.Track{ID: "t2", Title: "Two", Artist: "B", Path: "/crates/b.mp3", Deleted: true},
	)

	playlists, stats := New(zap.NewNop()).Resolve(cat)

	if stats.DeletedNodes != 1 {
		t.Errorf("deleted nodes = %d, want 1", stats.DeletedNodes)
	}
	// A child of a deleted folder has no valid ancestor chain and is
	// excluded, not reparented.
	if stats.Orphaned != 1 {
		t.Errorf("orphaned = %d, want 1", stats.Orphaned)
	}
	if len(playlists) != 1 {
		t.Fatalf("resolved = %d playlists, want 1", len(playlists))
	}

	keep := playlists[0]
	if stats.DeletedTracks != 1 {
		t.Errorf("deleted tracks = %d, want 1", stats.DeletedTracks)
	}
	// Deleted and dangling references are both gone.
	if len(keep.Tracks) != 1 || keep.Tracks[0].Title != "One" {
		t.Errorf("tracks = %v", keep.Tracks)
	}
}

func TestResolveSmartPlaylist(t *testing.T) {
	query := `<NODE Id="1" LogicalOperator="1" AutomaticUpdate="1">` +
		`<CONDITION PropertyName="genre" Operator="1" ValueUnit="" ValueLeft="Techno" ValueRight=""/>` +
		`</NODE>`

	cat := newTestCatalog([]catalog.Node{
		{ID: "s1", ParentID: catalog.RootID, Name: "Auto Techno", Kind: catalog.KindSmart, SmartQuery: query},
		{ID: "s2", ParentID: catalog.RootID, Name: "Broken", Kind: catalog.KindSmart, SmartQuery: "not xml <"},
	},
		catalog.Track{ID: "t1", Title: "One", Artist: "A", Genre: "Techno", Path: "/crates/a.mp3"},
		catalog.Track{ID: "t2", Title: "Two", Artist: "B", Genre: "House", Path: "/crates/b.mp3"},
		catalog.Track{ID: "t3", Title: "Three", Artist: "C", Genre: "Techno", Path: "/crates/c.mp3", Deleted: true},
	)

	playlists, _ := New(zap.NewNop()).Resolve(cat)

	smart := find(t, playlists, "s1")
	if len(smart.Tracks) != 1 || smart.Tracks[0].Title != "One" {
		t.Errorf("smart tracks = %v", smart.Tracks)
	}

	// Unparseable query degrades to zero tracks, never fails the pass.
	broken := find(t, playlists, "s2")
	if len(broken.Tracks) != 0 {
		t.Errorf("broken smart playlist has %d tracks", len(broken.Tracks))
	}
}

func TestResolveUnknownArtistSubstitution(t *testing.T) {
	cat := newTestCatalog([]catalog.Node{
		{ID: "p", ParentID: catalog.RootID, Name: "Mix", Kind: catalog.KindPlaylist, TrackIDs: []string{"t1"}},
	}, catalog.Track{ID: "t1", Title: "", Artist: "", Path: "/crates/a.mp3"})

	playlists, _ := New(zap.NewNop()).Resolve(cat)
	track := find(t, playlists, "p").Tracks[0]
	if track.Artist != "Unknown" || track.Title != "Unknown" {
		t.Errorf("track = %+v", track)
	}
	if track.Origin != "Mix" {
		t.Errorf("origin = %q", track.Origin)
	}
}

func TestResolveDeterministic(t *testing.T) {
	nodes := []catalog.Node{
		{ID: "f", ParentID: catalog.RootID, Name: "Sets?", Kind: catalog.KindFolder},
		{ID: "p1", ParentID: "f", Name: "A/B", Kind: catalog.KindPlaylist},
		{ID: "p2", ParentID: "f", Name: "AB", Kind: catalog.KindPlaylist},
		{ID: "p3", ParentID: "f", Name: "AB?", Kind: catalog.KindPlaylist},
	}

	first, _ := New(zap.NewNop()).Resolve(newTestCatalog(nodes))
	second, _ := New(zap.NewNop()).Resolve(newTestCatalog(nodes))

	if len(first) != len(second) {
		t.Fatalf("run sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Path != second[i].Path {
			t.Errorf("run mismatch at %d: %q/%q vs %q/%q",
				i, first[i].Path, first[i].Name, second[i].Path, second[i].Name)
		}
	}
}
