package tilestore

import (
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
)

// TileKey is the (zoom, x, y) identity of a tile. Keys are comparable and
// used directly as the cache map key.
type TileKey struct {
	Z int
	X int
	Y int
}

// String returns the key in "z/x/y" form, also used as the coalescing key.
func (k TileKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Z, k.X, k.Y)
}

// Valid reports whether the key lies inside the tile grid for its zoom.
func (k TileKey) Valid() bool {
	if k.Z < 0 || k.X < 0 || k.Y < 0 {
		return false
	}
	n := 1 << uint(k.Z)
	return k.X < n && k.Y < n
}

// Tile is a decoded, render-ready tile. Layers carry the decoded vector
// geometry; Raw keeps the wire bytes for re-persisting (e.g. the fetch
// command writing an MBTiles file). Styler is the opaque styling handle the
// store forwards to every tile it creates; its contract belongs to the
// renderer.
type Tile struct {
	Key    TileKey
	Layers mvt.Layers
	Raw    []byte
	Styler any
}

// Decoder turns a raw tile payload into decoded vector layers. The store
// treats payloads as opaque beyond this seam.
type Decoder interface {
	Decode(data []byte) (mvt.Layers, error)
}

// MVTDecoder is the default Decoder. It accepts both gzipped and plain
// Mapbox Vector Tile payloads, since HTTP endpoints and MBTiles rows
// disagree on which arrives.
type MVTDecoder struct{}

// Decode unmarshals a vector tile payload.
func (MVTDecoder) Decode(data []byte) (mvt.Layers, error) {
	layers, err := mvt.UnmarshalGzipped(data)
	if err == nil {
		return layers, nil
	}
	return mvt.Unmarshal(data)
}
