package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const migrateXML = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <COLLECTION Entries="1">
    <TRACK TrackID="1" Name="One" Artist="A" AverageBpm="120.00"
           Location="file://localhost%s"/>
  </COLLECTION>
  <PLAYLISTS>
    <NODE Type="0" Name="ROOT" Count="1">
      <NODE Name="Mix" Type="1" KeyType="0" Entries="1">
        <TRACK Key="1"/>
      </NODE>
    </NODE>
  </PLAYLISTS>
</DJ_PLAYLISTS>`

func TestMigrateSkipSync(t *testing.T) {
	root := t.TempDir()
	trackPath := filepath.Join(root, "a.mp3")
	if err := os.WriteFile(trackPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "collection.xml")
	if err := os.WriteFile(xmlPath, []byte(fmt.Sprintf(migrateXML, trackPath)), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "output")
	cfgPath := filepath.Join(dir, "config.toml")
	cfgBody := fmt.Sprintf("source_root = %q\noutput_dir = %q\n\n[catalog]\nxml_path = %q\n",
		root, out, xmlPath)
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"migrate", "--skip-sync", "--config", cfgPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "Mix.m3u"))
	if err != nil {
		t.Fatalf("playlist file: %v", err)
	}
	want := "#EXTM3U\n#EXTINF:-1,A - One\n/data/music/a.mp3\n"
	if string(data) != want {
		t.Errorf("playlist = %q, want %q", data, want)
	}
}
