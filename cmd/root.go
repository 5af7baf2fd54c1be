package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/tidyloom-cli/internal/config"
	"github.com/KaramelBytes/tidyloom-cli/internal/logging"
)

var (
	// Global flags
	cfgFile       string
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global

	closeLogs = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "tidyloom",
	Short: "tidyloom CLI: clean, reshape, and join tabular data",
	Long: `tidyloom reads CSV, TSV and XLSX files into typed tables and cleans them:
rename (including empty column names), filter and derive columns, recode,
convert types, tidy strings, melt and pivot, join on differently named keys,
and write the result back out as CSV or SQLite. Steps can be chained in a
YAML recipe and run with "tidyloom run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	err := rootCmd.Execute()
	closeLogs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tidyloom/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{Reader: "tidy", LogLevel: "warn", LogFormat: "text"}
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}

	closeLogs()
	cleanup, err := logging.Setup(os.Stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, SeqURL: cfg.SeqURL})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: logging setup: %v\n", err)
	}
	closeLogs = cleanup
}
