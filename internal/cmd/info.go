package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/termatlas/internal/config"
	"github.com/MeKo-Tech/termatlas/internal/mbtiles"
	"github.com/MeKo-Tech/termatlas/internal/tilestore"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Inspect a tile source",
	Long:  "Resolve the backend mode for the configured source and, for MBTiles databases, print their metadata.",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	cfg := config.FromViper()
	if cfg.Source == "" {
		return fmt.Errorf("--source is required")
	}

	mode := tilestore.ResolveMode(cfg.Source)
	fmt.Printf("source: %s\n", cfg.Source)
	fmt.Printf("mode:   %s\n", mode)

	if mode != tilestore.ModeMBTiles {
		return nil
	}

	if !mbtiles.DriverAvailable() {
		return fmt.Errorf("sqlite driver not compiled in; cannot read %s", cfg.Source)
	}
	r, err := mbtiles.Open(cfg.Source)
	if err != nil {
		return err
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		return err
	}

	fmt.Printf("name:        %s\n", meta.Name)
	fmt.Printf("format:      %s\n", meta.Format)
	if meta.Description != "" {
		fmt.Printf("description: %s\n", meta.Description)
	}
	if meta.Attribution != "" {
		fmt.Printf("attribution: %s\n", meta.Attribution)
	}
	fmt.Printf("zoom:        %d-%d\n", meta.MinZoom, meta.MaxZoom)
	if meta.Bounds != [4]float64{} {
		fmt.Printf("bounds:      %.6f,%.6f,%.6f,%.6f\n",
			meta.Bounds[0], meta.Bounds[1], meta.Bounds[2], meta.Bounds[3])
	}
	return nil
}
