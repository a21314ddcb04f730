package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/termatlas/internal/config"
	"github.com/MeKo-Tech/termatlas/internal/geomath"
	"github.com/MeKo-Tech/termatlas/internal/mbtiles"
	"github.com/MeKo-Tech/termatlas/internal/tilestore"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Prefetch tiles for a bounding box",
	Long: `Fetch all tiles covering a bounding box across a zoom range and warm the
disk cache, or write them into an MBTiles file with --output.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("bbox", "", "Bounding box: minLon,minLat,maxLon,maxLat (e.g. \"9.7,52.3,9.9,52.4\")")
	fetchCmd.Flags().Int("zoom-min", 0, "Minimum zoom level")
	fetchCmd.Flags().Int("zoom-max", 0, "Maximum zoom level")
	fetchCmd.Flags().IntP("workers", "w", config.DefaultFetchWorkers, "Number of parallel fetch workers")
	fetchCmd.Flags().Duration("timeout", config.DefaultHTTPTimeout, "Per-tile request timeout")
	fetchCmd.Flags().String("output", "", "Write fetched payloads into this MBTiles file instead of only warming the cache")
	fetchCmd.Flags().Bool("allow-failures", false, "Continue when individual tiles fail")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"fetch.bbox", "bbox"},
		{"fetch.zoom_min", "zoom-min"},
		{"fetch.zoom_max", "zoom-max"},
		{"fetch.workers", "workers"},
		{"fetch.timeout", "timeout"},
		{"fetch.output", "output"},
		{"fetch.allow_failures", "allow-failures"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, fetchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg := config.FromViper()
	if cfg.Source == "" {
		return fmt.Errorf("--source is required")
	}

	bbox, err := parseBBox(viper.GetString("fetch.bbox"))
	if err != nil {
		return err
	}
	zoomMin := viper.GetInt("fetch.zoom_min")
	zoomMax := viper.GetInt("fetch.zoom_max")
	if zoomMax < zoomMin {
		return fmt.Errorf("--zoom-max must be >= --zoom-min")
	}
	allowFailures := viper.GetBool("fetch.allow_failures")
	output := viper.GetString("fetch.output")

	var tiles []geomath.TileXY
	for z := zoomMin; z <= zoomMax; z++ {
		tiles = append(tiles, geomath.TilesCovering(bbox, z)...)
	}
	logger.Info("prefetching tiles",
		"count", len(tiles), "zoom_min", zoomMin, "zoom_max", zoomMax, "workers", cfg.FetchWorkers)

	store := tilestore.New(cfg, logger, tilestore.Options{})
	if err := store.Init(cfg.Source); err != nil {
		return err
	}
	defer store.Close()

	var writer *mbtiles.Writer
	if output != "" {
		writer, err = mbtiles.NewWriter(output, mbtiles.Metadata{
			Name:    "termatlas fetch",
			Format:  "pbf",
			Bounds:  bbox,
			MinZoom: zoomMin,
			MaxZoom: zoomMax,
		})
		if err != nil {
			return err
		}
		defer writer.Close()
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.FetchWorkers)

	for _, t := range tiles {
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
			defer cancel()

			tile, err := store.GetTile(reqCtx, t.Z, t.X, t.Y)
			if err != nil {
				if allowFailures {
					logger.Warn("tile failed", "tile", t.String(), "error", err)
					return nil
				}
				return fmt.Errorf("tile %s: %w", t.String(), err)
			}
			if writer != nil {
				return writer.WriteTile(t.Z, t.X, t.Y, tile.Raw)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("prefetch finished", "tiles", len(tiles), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) ([4]float64, error) {
	var bbox [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return bbox, fmt.Errorf("--bbox must be minLon,minLat,maxLon,maxLat, got %q", s)
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return bbox, fmt.Errorf("invalid bbox component %q: %w", part, err)
		}
		bbox[i] = f
	}
	if bbox[0] >= bbox[2] || bbox[1] >= bbox[3] {
		return bbox, fmt.Errorf("bbox min must be less than max: %v", bbox)
	}
	return bbox, nil
}
