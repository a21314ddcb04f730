// Package geomath provides the coordinate and projection math shared by the
// tile and label layers: Web Mercator tile space conversions, ground
// resolution, tile enumeration for a bounding box, and color decoding.
package geomath

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// EarthCircumference is the equatorial circumference of the Web Mercator
// sphere in meters.
const EarthCircumference = 40075016.686

// TileXY identifies a tile in the slippy-map scheme (z/x/y, XYZ row order).
type TileXY struct {
	Z int
	X int
	Y int
}

// String returns the tile in "z/x/y" form.
func (t TileXY) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Valid reports whether the coordinate lies inside the tile grid for its zoom.
func (t TileXY) Valid() bool {
	if t.Z < 0 || t.X < 0 || t.Y < 0 {
		return false
	}
	n := 1 << uint(t.Z)
	return t.X < n && t.Y < n
}

// LonLatToTile converts a WGS84 coordinate to fractional tile coordinates at
// the given zoom. The integer parts are the tile column and row, the
// fractional parts the position within that tile.
func LonLatToTile(lon, lat float64, zoom int) (x, y float64) {
	n := math.Exp2(float64(zoom))
	x = (lon + 180.0) / 360.0 * n

	latRad := lat * math.Pi / 180.0
	y = (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

// TileToLonLat converts fractional tile coordinates back to WGS84.
func TileToLonLat(x, y float64, zoom int) (lon, lat float64) {
	n := math.Exp2(float64(zoom))
	lon = x/n*360.0 - 180.0
	lat = 180.0 / math.Pi * math.Atan(math.Sinh(math.Pi*(1.0-2.0*y/n)))
	return lon, lat
}

// MetersPerPixel returns the ground resolution at the given latitude, zoom
// and tile size.
func MetersPerPixel(lat float64, zoom, tileSize int) float64 {
	return EarthCircumference * math.Cos(lat*math.Pi/180.0) /
		(math.Exp2(float64(zoom)) * float64(tileSize))
}

// TilesCovering enumerates the tiles covering a bounding box at one zoom
// level. bbox is [minLon, minLat, maxLon, maxLat] in WGS84.
func TilesCovering(bbox [4]float64, zoom int) []TileXY {
	z := maptile.Zoom(zoom)
	minTile := maptile.At(orb.Point{bbox[0], bbox[1]}, z)
	maxTile := maptile.At(orb.Point{bbox[2], bbox[3]}, z)

	minX, maxX := minTile.X, maxTile.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	// Y grows southward, so the latitude order flips
	minY, maxY := minTile.Y, maxTile.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	tiles := make([]TileXY, 0, int(maxX-minX+1)*int(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			tiles = append(tiles, TileXY{Z: zoom, X: int(x), Y: int(y)})
		}
	}
	return tiles
}

// ParseHexColor decodes "#rgb" or "#rrggbb" into its channels.
func ParseHexColor(s string) (r, g, b uint8, ok bool) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, false
	}

	hex := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 10, true
		}
		return 0, false
	}

	switch len(s) {
	case 4:
		vals := [3]uint8{}
		for i := 0; i < 3; i++ {
			v, valid := hex(s[i+1])
			if !valid {
				return 0, 0, 0, false
			}
			vals[i] = v*16 + v
		}
		return vals[0], vals[1], vals[2], true
	case 7:
		vals := [3]uint8{}
		for i := 0; i < 3; i++ {
			hi, okHi := hex(s[i*2+1])
			lo, okLo := hex(s[i*2+2])
			if !okHi || !okLo {
				return 0, 0, 0, false
			}
			vals[i] = hi*16 + lo
		}
		return vals[0], vals[1], vals[2], true
	}
	return 0, 0, 0, false
}
