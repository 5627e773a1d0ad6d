// Package rekordbox reads Rekordbox catalogs, either the master.db
// SQLite database (Rekordbox 6 and 7 share the same schema) or an XML
// collection export.
package rekordbox

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nvialar/rekordfin/internal/catalog"
	dbutil "github.com/nvialar/rekordfin/internal/db"
)

// djmdPlaylist.Attribute values.
const (
	attrPlaylist = 0
	attrFolder   = 1
	attrSmart    = 4
)

// DBSource reads a catalog snapshot from a Rekordbox database file.
type DBSource struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenDB opens a Rekordbox master.db. The file must already exist;
// opening never creates one.
func OpenDB(path string, log *zap.Logger) (*DBSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("rekordbox database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open rekordbox database: %w", err)
	}
	return &DBSource{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *DBSource) Close() error {
	return s.db.Close()
}

// Load reads all playlists, folders and the track table in one pass.
func (s *DBSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{Tracks: make(map[string]catalog.Track)}

	if err := s.loadTracks(ctx, cat); err != nil {
		return nil, err
	}
	refs, err := s.loadTrackRefs(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadNodes(ctx, cat, refs); err != nil {
		return nil, err
	}

	s.log.Info("loaded rekordbox database",
		zap.Int("playlists", len(cat.Nodes)),
		zap.Int("tracks", len(cat.Tracks)))
	return cat, nil
}

func (s *DBSource) loadTracks(ctx context.Context, cat *catalog.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.ID, c.Title, a.Name, al.Name, g.Name, c.BPM, c.Rating,
		       c.FolderPath, c.rb_local_deleted
		FROM djmdContent c
		LEFT JOIN djmdArtist a ON a.ID = c.ArtistID
		LEFT JOIN djmdAlbum al ON al.ID = c.AlbumID
		LEFT JOIN djmdGenre g ON g.ID = c.GenreID
		ORDER BY c.ID
	`)
	if err != nil {
		return fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t catalog.Track
		var title, artist, album, genre, folderPath sql.NullString
		var bpm sql.NullFloat64
		var rating sql.NullInt64
		var deleted int
		if err := rows.Scan(&t.ID, &title, &artist, &album, &genre,
			&bpm, &rating, &folderPath, &deleted); err != nil {
			return fmt.Errorf("scan track: %w", err)
		}
		t.Title = dbutil.NullStringValue(title)
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.Genre = dbutil.NullStringValue(genre)
		// Rekordbox stores BPM multiplied by 100 (12800 = 128.00).
		t.BPM = dbutil.NullFloat64Value(bpm) / 100
		t.Rating = int(dbutil.NullInt64Value(rating))
		t.Path = dbutil.NullStringValue(folderPath)
		t.Deleted = deleted != 0

		cat.Tracks[t.ID] = t
		cat.Order = append(cat.Order, t.ID)
	}
	return rows.Err()
}

// loadTrackRefs reads the playlist membership table, ordered by track
// position so playlist files preserve Rekordbox ordering.
func (s *DBSource) loadTrackRefs(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT PlaylistID, ContentID
		FROM djmdSongPlaylist
		WHERE rb_local_deleted = 0
		ORDER BY PlaylistID, TrackNo
	`)
	if err != nil {
		return nil, fmt.Errorf("query playlist tracks: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]string)
	for rows.Next() {
		var playlistID string
		var contentID sql.NullString
		if err := rows.Scan(&playlistID, &contentID); err != nil {
			return nil, fmt.Errorf("scan playlist track: %w", err)
		}
		if contentID.Valid {
			refs[playlistID] = append(refs[playlistID], contentID.String)
		}
	}
	return refs, rows.Err()
}

func (s *DBSource) loadNodes(ctx context.Context, cat *catalog.Catalog, refs map[string][]string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ID, ParentID, Name, Attribute, SmartList, rb_local_deleted
		FROM djmdPlaylist
		ORDER BY ParentID, Seq, ID
	`)
	if err != nil {
		return fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n catalog.Node
		var parentID, name, smart sql.NullString
		var attribute, deleted int
		if err := rows.Scan(&n.ID, &parentID, &name, &attribute, &smart, &deleted); err != nil {
			return fmt.Errorf("scan playlist: %w", err)
		}
		n.ParentID = dbutil.NullStringValue(parentID)
		if n.ParentID == "" {
			n.ParentID = catalog.RootID
		}
		n.Name = dbutil.NullStringValue(name)
		n.Deleted = deleted != 0

		switch attribute {
		case attrPlaylist:
			n.Kind = catalog.KindPlaylist
			n.TrackIDs = refs[n.ID]
		case attrSmart:
			n.Kind = catalog.KindSmart
			n.SmartQuery = dbutil.NullStringValue(smart)
		default:
			// Attribute 1 and anything unexpected is a container.
			n.Kind = catalog.KindFolder
		}

		cat.Nodes = append(cat.Nodes, n)
	}
	return rows.Err()
}
