// Package m3u writes extended M3U playlist files.
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Entry is one playlist line pair.
type Entry struct {
	Artist string
	Title  string
	Path   string // destination path as it should appear in the file
}

// Write emits a UTF-8 extended M3U document: the #EXTM3U header, then
// for each entry an #EXTINF line with a -1 duration placeholder and the
// track path, in the order given.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "#EXTINF:-1,%s - %s\n%s\n", e.Artist, e.Title, e.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes a playlist to path, creating or truncating it.
func WriteFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("write playlist: %w", err)
	}
	return f.Close()
}
