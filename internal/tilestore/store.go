// Package tilestore acquires and caches decoded map tiles for the viewer.
// A store resolves its source locator into one of three backend modes
// (remote z/x/y endpoint, MBTiles database, standalone tile file), keeps a
// bounded in-memory cache with strict FIFO eviction, coalesces concurrent
// fetches for the same key, and can persist raw HTTP payloads to disk.
package tilestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/MeKo-Tech/termatlas/internal/config"
	"github.com/MeKo-Tech/termatlas/internal/mbtiles"
)

// Options carries the store's collaborators. Zero values select the
// defaults: the MVT decoder, no styler, http.DefaultClient.
type Options struct {
	// Decoder turns raw payloads into decoded layers.
	Decoder Decoder
	// Styler is an opaque handle forwarded onto every created Tile.
	Styler any
	// Client issues HTTP tile requests. The store sets no timeout of its
	// own; callers bound latency through the GetTile context.
	Client *http.Client
}

// Store owns tile acquisition, the in-memory cache and optional disk
// persistence. All cache bookkeeping is serialized behind one mutex; the
// singleflight group prevents duplicate fetches for a key.
type Store struct {
	cfg     *config.Config
	logger  *slog.Logger
	decoder Decoder
	styler  any
	client  *http.Client

	mu       sync.Mutex
	ready    bool
	mode     SourceMode
	source   string
	entries  map[TileKey]*Tile
	order    []TileKey
	capacity int
	db       *mbtiles.Reader
	persist  bool
	disk     diskCache

	group singleflight.Group
}

// New creates a store. It is inert until Init resolves a source.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Decoder == nil {
		opts.Decoder = MVTDecoder{}
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}

	capacity := cfg.TileCacheSize
	if capacity <= 0 {
		capacity = config.DefaultTileCacheSize
	}

	return &Store{
		cfg:      cfg,
		logger:   logger,
		decoder:  opts.Decoder,
		styler:   opts.Styler,
		client:   opts.Client,
		capacity: capacity,
	}
}

// Init resolves the locator into a backend mode and resets all cache state,
// making re-initialization idempotent. HTTP sources optionally enable disk
// persistence; a failure to create the cache directory disables persistence
// for the session instead of failing Init. MBTiles sources require the
// sqlite driver and fail with ErrMissingDependency without it.
func (s *Store) Init(locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reset to empty regardless of what Init decides below.
	s.entries = make(map[TileKey]*Tile)
	s.order = nil
	s.ready = false
	s.persist = false
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}

	mode := ResolveMode(locator)
	switch mode {
	case ModeHTTP:
		if !strings.HasSuffix(locator, "/") {
			locator += "/"
		}
		if s.cfg.PersistTiles {
			if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				s.logger.Warn("disk persistence disabled",
					"cache_dir", s.cfg.CacheDir, "error", err)
			} else {
				s.persist = true
				s.disk = diskCache{root: s.cfg.CacheDir}
			}
		}

	case ModeMBTiles:
		if !mbtiles.DriverAvailable() {
			return fmt.Errorf("%w: sqlite driver not compiled in, add the modernc.org/sqlite import to read %q",
				ErrMissingDependency, locator)
		}
		db, err := mbtiles.Open(locator)
		if err != nil {
			return fmt.Errorf("failed to open mbtiles source %q: %w", locator, err)
		}
		s.db = db

	case ModeTileFile:
		if _, err := os.Stat(locator); err != nil {
			return fmt.Errorf("failed to stat tile file %q: %w", locator, err)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSource, locator)
	}

	s.mode = mode
	s.source = locator
	s.ready = true
	s.logger.Info("tile source initialized",
		"mode", mode.String(), "source", locator, "persist", s.persist)
	return nil
}

// Mode returns the resolved backend mode, or ModeUnknown before Init.
func (s *Store) Mode() SourceMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ModeUnknown
	}
	return s.mode
}

// Len returns the number of cached tiles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cached reports whether a key is in the in-memory cache.
func (s *Store) Cached(z, x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[TileKey{Z: z, X: x, Y: y}]
	return ok
}

// GetTile returns the tile for (z, x, y), fetching on a cache miss.
// Concurrent calls for the same key share a single fetch; all callers see
// the same tile or the same error. A failed fetch leaves no cache entry.
func (s *Store) GetTile(ctx context.Context, z, x, y int) (*Tile, error) {
	key := TileKey{Z: z, X: x, Y: y}

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: call Init first", ErrNoSource)
	}
	if tile, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return tile, nil
	}
	s.mu.Unlock()

	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		// Re-check under the flight: a previous holder of this key may
		// have inserted between our miss and this callback.
		s.mu.Lock()
		if tile, ok := s.entries[key]; ok {
			s.mu.Unlock()
			return tile, nil
		}
		s.evictLocked()
		mode := s.mode
		s.mu.Unlock()

		tile, err := s.fetch(ctx, mode, key)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[key] = tile
		s.order = append(s.order, key)
		s.mu.Unlock()
		return tile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tile), nil
}

// evictLocked removes the oldest entries so the next insert stays within
// capacity. Strict FIFO by insertion order; access recency plays no part.
func (s *Store) evictLocked() {
	over := len(s.order) - s.capacity + 1
	if over <= 0 {
		return
	}
	for _, key := range s.order[:over] {
		delete(s.entries, key)
		s.logger.Debug("evicted tile", "key", key.String())
	}
	s.order = append(s.order[:0], s.order[over:]...)
}

// fetch dispatches to the mode-specific path. The switch is exhaustive over
// the closed mode set; anything else is an explicit error, never a silent
// drop.
func (s *Store) fetch(ctx context.Context, mode SourceMode, key TileKey) (*Tile, error) {
	switch mode {
	case ModeHTTP:
		return s.fetchHTTP(ctx, key)
	case ModeMBTiles:
		return s.fetchMBTiles(key)
	case ModeTileFile:
		return s.fetchTileFile(key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
}

// fetchHTTP serves a persisted payload when one exists, otherwise performs
// the network round trip. Persistence writes are fire-and-forget: a failed
// write logs a warning and the fetch still succeeds.
func (s *Store) fetchHTTP(ctx context.Context, key TileKey) (*Tile, error) {
	if s.persist {
		if data, ok := s.disk.read(key); ok {
			s.logger.Debug("tile served from disk", "key", key.String())
			return s.decode(key, data)
		}
	}

	url := fmt.Sprintf("%s%d/%d/%d.pbf", s.source, key.Z, key.X, key.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrFetchFailed, url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetchFailed, url, err)
	}

	if s.persist {
		if err := s.disk.write(key, data); err != nil {
			s.logger.Warn("failed to persist tile", "key", key.String(), "error", err)
		}
	}

	return s.decode(key, data)
}

func (s *Store) fetchMBTiles(key TileKey) (*Tile, error) {
	data, err := s.db.TileData(key.Z, key.X, key.Y)
	if err != nil {
		return nil, fmt.Errorf("%w: mbtiles %s: %v", ErrFetchFailed, key.String(), err)
	}
	return s.decode(key, data)
}

// fetchTileFile serves the standalone tile file's content for any requested
// key; the per-key cache keeps re-reads rare.
func (s *Store) fetchTileFile(key TileKey) (*Tile, error) {
	data, err := os.ReadFile(s.source)
	if err != nil {
		return nil, fmt.Errorf("%w: tile file %s: %v", ErrFetchFailed, s.source, err)
	}
	return s.decode(key, data)
}

func (s *Store) decode(key TileKey, data []byte) (*Tile, error) {
	layers, err := s.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrFetchFailed, key.String(), err)
	}
	return &Tile{Key: key, Layers: layers, Raw: data, Styler: s.styler}, nil
}

// Close releases backend handles. The store can be re-initialized after.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}
