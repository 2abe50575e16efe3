package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/colprof/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Worker/batch flags (override config if set)
	flagWorkers   int
	flagBatchRows int
	flagFormat    string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "colprof",
	Short: "colprof: incremental, mergeable column profiles for CSV, XLSX and text",
	Long: `colprof profiles tabular columns (categorical, numeric and text statistics)
and free text (vocabulary, word counts and entity labels). Inputs are split into
chunks, profiled concurrently and merged, so results match a single pass.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.colprof/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "concurrent chunk workers (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagBatchRows, "batch-rows", 0, "rows per chunk (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "output format: md|json|yaml (overrides config)")
	log.SetOutput(os.Stderr)
	cobra.OnInitialize(loadConfig)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("workers") && flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if f.Changed("batch-rows") && flagBatchRows > 0 {
		cfg.BatchRows = flagBatchRows
	}
	if f.Changed("format") {
		cfg.OutputFormat = flagFormat
	}

	level := logrus.WarnLevel
	if l, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		level = l
	}
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
}
