// Package mbtiles reads and writes MBTiles databases holding vector tile
// payloads. Blobs pass through uninterpreted; callers own decompression and
// decoding.
package mbtiles

import (
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DriverName is the database/sql driver the package expects. The driver is
// an optional dependency: it registers itself through the blank import in
// driver.go, and DriverAvailable reports whether that happened.
const DriverName = "sqlite"

// DriverAvailable reports whether the sqlite driver is registered. Resolved
// once by callers during initialization, not re-checked per query.
func DriverAvailable() bool {
	return slices.Contains(sql.Drivers(), DriverName)
}

// Metadata contains the MBTiles metadata fields this viewer cares about.
type Metadata struct {
	Name        string
	Format      string // tile data type (pbf, png, ...)
	Description string
	Attribution string
	Bounds      [4]float64
	MinZoom     int
	MaxZoom     int
}

// ToMap converts Metadata to name/value rows for the metadata table.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Format != "" {
		result["format"] = m.Format
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Attribution != "" {
		result["attribution"] = m.Attribution
	}
	if m.MinZoom > 0 {
		result["minzoom"] = strconv.Itoa(m.MinZoom)
	}
	if m.MaxZoom > 0 {
		result["maxzoom"] = strconv.Itoa(m.MaxZoom)
	}
	if m.Bounds != [4]float64{} {
		result["bounds"] = fmt.Sprintf("%.6f,%.6f,%.6f,%.6f",
			m.Bounds[0], m.Bounds[1], m.Bounds[2], m.Bounds[3])
	}

	return result
}

func metadataFromMap(rows map[string]string) Metadata {
	meta := Metadata{
		Name:        rows["name"],
		Format:      rows["format"],
		Description: rows["description"],
		Attribution: rows["attribution"],
	}

	if v, ok := rows["minzoom"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.MinZoom = i
		}
	}
	if v, ok := rows["maxzoom"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.MaxZoom = i
		}
	}
	if v, ok := rows["bounds"]; ok {
		parts := strings.Split(v, ",")
		if len(parts) == 4 {
			for i, part := range parts {
				if f, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
					meta.Bounds[i] = f
				}
			}
		}
	}

	return meta
}
