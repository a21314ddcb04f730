// Package cmd wires the termatlas command line: tile prefetching and source
// inspection around the tile store.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "termatlas",
	Short: "Tile acquisition and label placement for a terminal map viewer",
	Long: `termatlas supplies renderable vector tile data to a terminal map viewer.

It resolves a tile source (remote z/x/y endpoint, MBTiles database, or a
standalone vector tile file), caches fetched tiles in memory and optionally
on disk, and decides where text labels fit without overlapping.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("source", "", "Tile source: http(s) URL prefix, .mbtiles file, or .pbf/.mvt tile file")
	rootCmd.PersistentFlags().Bool("persist-tiles", true, "Persist fetched HTTP tiles to the disk cache")
	rootCmd.PersistentFlags().String("cache-dir", "", "Disk cache directory (default: platform cache dir)")
	rootCmd.PersistentFlags().Int("tile-cache-size", 16, "In-memory tile cache capacity")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	for _, name := range []string{"source", "persist-tiles", "cache-dir", "tile-cache-size", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TERMATLAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
