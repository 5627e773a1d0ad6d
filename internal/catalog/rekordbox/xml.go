package rekordbox

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nvialar/rekordfin/internal/catalog"
)

// XMLSource reads a catalog snapshot from a Rekordbox XML export.
// The export carries no deleted flags and smart playlists arrive
// already materialized as plain playlists.
type XMLSource struct {
	path string
	log  *zap.Logger
}

// OpenXML prepares a reader for a Rekordbox XML export file.
func OpenXML(path string, log *zap.Logger) (*XMLSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("rekordbox xml: %w", err)
	}
	return &XMLSource{path: path, log: log}, nil
}

// Close is a no-op; the file is read in one shot by Load.
func (s *XMLSource) Close() error { return nil }

type xmlDocument struct {
	XMLName    xml.Name `xml:"DJ_PLAYLISTS"`
	Collection struct {
		Tracks []xmlTrack `xml:"TRACK"`
	} `xml:"COLLECTION"`
	Playlists struct {
		Root xmlNode `xml:"NODE"`
	} `xml:"PLAYLISTS"`
}

type xmlTrack struct {
	TrackID  string  `xml:"TrackID,attr"`
	Name     string  `xml:"Name,attr"`
	Artist   string  `xml:"Artist,attr"`
	Album    string  `xml:"Album,attr"`
	Genre    string  `xml:"Genre,attr"`
	Bpm      float64 `xml:"AverageBpm,attr"`
	Rating   int     `xml:"Rating,attr"`
	Location string  `xml:"Location,attr"`
}

type xmlNode struct {
	Type     int       `xml:"Type,attr"` // 0 folder, 1 playlist
	Name     string    `xml:"Name,attr"`
	Children []xmlNode `xml:"NODE"`
	Tracks   []struct {
		Key string `xml:"Key,attr"`
	} `xml:"TRACK"`
}

const (
	xmlTypeFolder   = 0
	xmlTypePlaylist = 1
)

// Load parses the export and flattens the nested playlist tree into the
// flat node list the resolver consumes, assigning synthetic IDs.
func (s *XMLSource) Load(ctx context.Context) (*catalog.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read rekordbox xml: %w", err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rekordbox xml: %w", err)
	}

	cat := &catalog.Catalog{Tracks: make(map[string]catalog.Track)}
	for _, t := range doc.Collection.Tracks {
		track := catalog.Track{
			ID:     t.TrackID,
			Title:  t.Name,
			Artist: t.Artist,
			Album:  t.Album,
			Genre:  t.Genre,
			BPM:    t.Bpm,
			Rating: t.Rating,
			Path:   locationToPath(t.Location),
		}
		cat.Tracks[track.ID] = track
		cat.Order = append(cat.Order, track.ID)
	}

	// The outermost NODE is the synthetic ROOT container; its children
	// are the catalog's top level.
	seq := 0
	for _, child := range doc.Playlists.Root.Children {
		s.walk(cat, child, catalog.RootID, &seq)
	}

	s.log.Info("loaded rekordbox xml",
		zap.Int("playlists", len(cat.Nodes)),
		zap.Int("tracks", len(cat.Tracks)))
	return cat, nil
}

func (s *XMLSource) walk(cat *catalog.Catalog, node xmlNode, parentID string, seq *int) {
	*seq++
	id := "xml-" + strconv.Itoa(*seq)

	n := catalog.Node{
		ID:       id,
		ParentID: parentID,
		Name:     node.Name,
	}
	if node.Type == xmlTypeFolder {
		n.Kind = catalog.KindFolder
	} else {
		n.Kind = catalog.KindPlaylist
		for _, ref := range node.Tracks {
			n.TrackIDs = append(n.TrackIDs, ref.Key)
		}
	}
	cat.Nodes = append(cat.Nodes, n)

	for _, child := range node.Children {
		s.walk(cat, child, id, seq)
	}
}

// locationToPath converts the export's file URL form
// ("file://localhost/Users/dj/track.mp3", percent-encoded) into a
// plain filesystem path.
func locationToPath(location string) string {
	if location == "" {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	// url.Parse already percent-decodes the path component.
	p := u.Path
	// Windows exports carry a leading slash before the drive letter.
	if len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return strings.TrimSpace(p)
}
