// Package config loads the tool's configuration from TOML files,
// a .env file and REKORDFIN_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the resolved configuration bag for a run.
type Config struct {
	Catalog CatalogConfig `koanf:"catalog"`

	// SourceRoot is the root of the local music library ("crates")
	// every track path must live under.
	SourceRoot string `koanf:"source_root"`

	// DestRoot is the media server's library root; playlist files
	// reference tracks under this prefix. POSIX-style.
	DestRoot string `koanf:"dest_root"`

	// OutputDir receives the generated playlist tree.
	OutputDir string `koanf:"output_dir"`

	// OutputMode is "nested" (mirror folder hierarchy) or "flat"
	// (ancestry encoded into file names).
	OutputMode string `koanf:"output_mode"`

	Log    LogConfig    `koanf:"log"`
	Remote RemoteConfig `koanf:"remote"`
}

// CatalogConfig selects the Rekordbox source.
type CatalogConfig struct {
	DBPath  string `koanf:"db_path"`  // master.db
	XMLPath string `koanf:"xml_path"` // collection export
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"`
	Path  string `koanf:"path"`
}

// RemoteConfig describes the file share missing tracks are copied to.
// Either an S3-compatible endpoint or a locally mounted share directory.
type RemoteConfig struct {
	Endpoint  string `koanf:"endpoint"`
	Bucket    string `koanf:"bucket"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	UseSSL    bool   `koanf:"use_ssl"`
	LocalRoot string `koanf:"local_root"` // mounted share, used when no endpoint
	ShareRoot string `koanf:"share_root"` // path prefix on the share
}

// Load reads configuration. extraPath, when non-empty, is an explicit
// config file loaded last (highest priority before env vars).
func Load(extraPath string) (*Config, error) {
	// Environment files are how the tool has historically been
	// configured; missing .env is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	for _, path := range configPaths(extraPath) {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// REKORDFIN_SOURCE_ROOT=... ; REKORDFIN_CATALOG__DB_PATH=...
	if err := k.Load(env.Provider("REKORDFIN_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "REKORDFIN_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := &Config{
		DestRoot:   "/data/music",
		OutputDir:  "./output",
		OutputMode: "nested",
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Catalog.DBPath = expandPath(cfg.Catalog.DBPath)
	cfg.Catalog.XMLPath = expandPath(cfg.Catalog.XMLPath)
	cfg.SourceRoot = expandPath(cfg.SourceRoot)
	cfg.OutputDir = expandPath(cfg.OutputDir)
	cfg.Remote.LocalRoot = expandPath(cfg.Remote.LocalRoot)
	cfg.DestRoot = strings.TrimSuffix(cfg.DestRoot, "/")

	return cfg, nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.SourceRoot == "" {
		return errors.New("source_root is required")
	}
	if c.Catalog.DBPath == "" && c.Catalog.XMLPath == "" {
		return errors.New("either catalog.db_path or catalog.xml_path must be set")
	}
	if c.OutputMode != "nested" && c.OutputMode != "flat" {
		return errors.New(`output_mode must be "nested" or "flat"`)
	}
	return nil
}

// HasRemoteConfig reports whether a file share is configured.
func (c *Config) HasRemoteConfig() bool {
	if c.Remote.LocalRoot != "" {
		return true
	}
	return c.Remote.Endpoint != "" && c.Remote.Bucket != "" &&
		c.Remote.AccessKey != "" && c.Remote.SecretKey != ""
}

func configPaths(extraPath string) []string {
	paths := []string{
		filepath.Join(xdg.ConfigHome, "rekordfin", "config.toml"),
		"config.toml",
	}
	if extraPath != "" {
		paths = append(paths, extraPath)
	}
	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
