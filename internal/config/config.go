// Package config holds the runtime configuration shared by the tile store
// and label placer. A Config is built once at startup and passed by
// reference into constructors; nothing reads viper after that point.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultTileCacheSize bounds the in-memory tile cache.
	DefaultTileCacheSize = 16
	// DefaultLabelMargin is the clearance around placed labels in grid units.
	DefaultLabelMargin = 5
	// DefaultFetchWorkers bounds parallelism of the bulk fetch command.
	DefaultFetchWorkers = 4
	// DefaultHTTPTimeout bounds a single tile request in the fetch command.
	DefaultHTTPTimeout = 15 * time.Second
)

// Config is the configuration surface consumed by the core components.
type Config struct {
	// Source is the tile source locator: an http(s) URL prefix, an
	// .mbtiles database, or a standalone .pbf/.mvt tile file.
	Source string

	// PersistTiles enables the on-disk payload cache for the HTTP source.
	PersistTiles bool

	// CacheDir is the root of the on-disk payload cache.
	CacheDir string

	// TileCacheSize is the in-memory tile cache capacity in entries.
	TileCacheSize int

	// LabelMargin is the default clearance around labels in grid units.
	LabelMargin int

	// FetchWorkers is the worker count for bulk prefetching.
	FetchWorkers int

	// HTTPTimeout is the per-request deadline used by the fetch command.
	HTTPTimeout time.Duration
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		PersistTiles:  true,
		CacheDir:      defaultCacheDir(),
		TileCacheSize: DefaultTileCacheSize,
		LabelMargin:   DefaultLabelMargin,
		FetchWorkers:  DefaultFetchWorkers,
		HTTPTimeout:   DefaultHTTPTimeout,
	}
}

// FromViper overlays bound viper keys onto the defaults. Unset keys keep
// their default values.
func FromViper() *Config {
	cfg := Default()

	if v := viper.GetString("source"); v != "" {
		cfg.Source = v
	}
	if viper.IsSet("persist-tiles") {
		cfg.PersistTiles = viper.GetBool("persist-tiles")
	}
	if v := viper.GetString("cache-dir"); v != "" {
		cfg.CacheDir = v
	}
	if v := viper.GetInt("tile-cache-size"); v > 0 {
		cfg.TileCacheSize = v
	}
	if v := viper.GetInt("label-margin"); v > 0 {
		cfg.LabelMargin = v
	}
	if v := viper.GetInt("fetch.workers"); v > 0 {
		cfg.FetchWorkers = v
	}
	if v := viper.GetDuration("fetch.timeout"); v > 0 {
		cfg.HTTPTimeout = v
	}

	return cfg
}

// defaultCacheDir resolves the platform cache directory for persisted tiles.
// Falls back to a dot directory in the working directory when the platform
// offers no cache root.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".termatlas", "tiles")
	}
	return filepath.Join(base, "termatlas", "tiles")
}
