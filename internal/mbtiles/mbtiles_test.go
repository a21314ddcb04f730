package mbtiles

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestDriverAvailable(t *testing.T) {
	if !DriverAvailable() {
		t.Fatal("sqlite driver should be registered via driver.go")
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	metadata := Metadata{
		Name:        "Test Tileset",
		Format:      "pbf",
		Description: "round trip fixture",
		Attribution: "© Test",
		Bounds:      [4]float64{9.5, 51.8, 9.9, 52.1},
		MinZoom:     10,
		MaxZoom:     14,
	}

	w, err := NewWriter(dbPath, metadata)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	blob := []byte("opaque gzipped pbf bytes")
	tiles := []struct{ z, x, y int }{
		{13, 4317, 2692},
		{13, 4318, 2692},
		{14, 8634, 5384},
	}

	for _, tile := range tiles {
		if err := w.WriteTile(tile.z, tile.x, tile.y, blob); err != nil {
			t.Fatalf("failed to write tile %d/%d/%d: %v", tile.z, tile.x, tile.y, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	r, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open reader: %v", err)
	}
	defer r.Close()

	for _, tile := range tiles {
		data, err := r.TileData(tile.z, tile.x, tile.y)
		if err != nil {
			t.Fatalf("failed to read tile %d/%d/%d: %v", tile.z, tile.x, tile.y, err)
		}
		if string(data) != string(blob) {
			t.Errorf("tile %d/%d/%d: blob mismatch", tile.z, tile.x, tile.y)
		}
	}

	// Blobs pass through untouched, no compression added by this layer.
	if data, _ := r.TileData(13, 4317, 2692); len(data) != len(blob) {
		t.Errorf("blob length changed: got %d, want %d", len(data), len(blob))
	}

	meta, err := r.Metadata()
	if err != nil {
		t.Fatalf("failed to read metadata: %v", err)
	}
	if meta != metadata {
		t.Errorf("metadata mismatch:\ngot  %+v\nwant %+v", meta, metadata)
	}
}

func TestReaderMissingTile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := NewWriter(dbPath, Metadata{Name: "empty", Format: "pbf"})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	r, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open reader: %v", err)
	}
	defer r.Close()

	if _, err := r.TileData(5, 1, 2); err == nil {
		t.Error("expected error for missing tile")
	}
}

func TestReaderTMSFlip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.mbtiles")

	w, err := NewWriter(dbPath, Metadata{Name: "flip", Format: "pbf"})
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	if err := w.WriteTile(3, 1, 2, []byte("payload")); err != nil {
		t.Fatalf("failed to write tile: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	// The stored row must be the TMS complement of the XYZ row.
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		t.Fatalf("failed to open raw database: %v", err)
	}
	defer db.Close()

	var row int
	if err := db.QueryRow("SELECT tile_row FROM tiles WHERE zoom_level=3 AND tile_column=1").Scan(&row); err != nil {
		t.Fatalf("failed to query stored row: %v", err)
	}
	if want := (1 << 3) - 1 - 2; row != want {
		t.Errorf("stored tile_row: got %d, want %d", row, want)
	}

	r, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open reader: %v", err)
	}
	defer r.Close()

	if _, err := r.TileData(3, 1, 2); err != nil {
		t.Errorf("XYZ read-back after TMS flip failed: %v", err)
	}
}

func TestOpenRejectsNonMBTiles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "plain.mbtiles")

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	db.Close()

	if _, err := Open(dbPath); err == nil {
		t.Error("expected error for database without tiles table")
	}
}
