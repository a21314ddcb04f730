package tilestore

import (
	"fmt"
	"os"
	"path/filepath"
)

// diskCache persists raw tile payloads under {root}/{z}/{x}-{y}.pbf. Files
// are written once per key and never rewritten; reads are best-effort and
// any failure counts as a miss.
type diskCache struct {
	root string
}

func (c *diskCache) path(key TileKey) string {
	return filepath.Join(c.root, fmt.Sprintf("%d", key.Z), fmt.Sprintf("%d-%d.pbf", key.X, key.Y))
}

// read returns the persisted payload for key, or false on any miss or
// read error.
func (c *diskCache) read(key TileKey) ([]byte, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// write persists a payload. The tmp-file rename keeps concurrent readers
// from ever seeing a partial file.
func (c *diskCache) write(key TileKey, data []byte) error {
	p := c.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create zoom directory: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write tile payload: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize tile payload: %w", err)
	}
	return nil
}
