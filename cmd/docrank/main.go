// Package main is the entry point for the docrank CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/pipeline"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    config.Config
	logger *slog.Logger
)

// flagKeys maps command-line flags onto config keys. A flag that is set
// overrides env and config file values.
var flagKeys = map[string]string{
	"pdfs-dir":          "pdfs_dir",
	"output-dir":        "output_dir",
	"input":             "input_file",
	"persona":           "persona",
	"job":               "job",
	"threshold":         "score_threshold",
	"enforce-threshold": "enforce_threshold",
	"max-sections":      "max_sections",
	"port":              "port",
	"log-level":         "log_level",
}

var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Rank document sections against a persona and a job to be done",
	Long: `docrank scores the sections of a document collection against a persona
and the task that persona needs to accomplish, then writes a ranked analysis
per document and one consolidated summary for the whole set.

Scoring is lexical and deterministic: the same inputs always produce the same
output, timestamps aside.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return fmt.Errorf("bind flags: %w", bindErr)
		}

		cfg, err = config.Load(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docrank.yaml or ~/.config/docrank/docrank.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
}

func newProcessor() *pipeline.Processor {
	return pipeline.NewProcessor(cfg, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
