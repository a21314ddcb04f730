package tilestore

import (
	"path/filepath"
	"strings"
)

// SourceMode identifies the backend a store fetches from. It is resolved
// once from the source locator during Init and fixed for the lifetime of
// the store.
type SourceMode int

const (
	// ModeUnknown is the zero value; no dispatch path accepts it.
	ModeUnknown SourceMode = iota
	// ModeHTTP fetches tiles from a remote z/x/y endpoint.
	ModeHTTP
	// ModeMBTiles reads tiles from a local MBTiles database.
	ModeMBTiles
	// ModeTileFile serves a single standalone vector tile file.
	ModeTileFile
)

// String returns the mode name for logging.
func (m SourceMode) String() string {
	switch m {
	case ModeHTTP:
		return "http"
	case ModeMBTiles:
		return "mbtiles"
	case ModeTileFile:
		return "tilefile"
	default:
		return "unknown"
	}
}

// ResolveMode derives the backend mode from a source locator. URL schemes
// win over extensions so that a remote "tiles.mbtiles" path is still HTTP.
func ResolveMode(locator string) SourceMode {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return ModeHTTP
	}
	switch strings.ToLower(filepath.Ext(locator)) {
	case ".mbtiles":
		return ModeMBTiles
	case ".pbf", ".mvt":
		return ModeTileFile
	}
	return ModeUnknown
}
