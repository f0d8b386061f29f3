package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lodestar/internal/config"
	"lodestar/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is populated by the persistent pre-run before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lodestar",
	Short: "Question answering over a private corpus with web-search fallback",
	Long: "Lodestar answers questions from a private document corpus. When local\n" +
		"evidence is insufficient it falls back to web search and iterates on the\n" +
		"question until the answer passes a confidence check.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if rootFlags.configPath != "" {
			cfg, err = config.LoadFromPath(rootFlags.configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}
		if rootFlags.logLevel != "" {
			cfg.Log.Level = rootFlags.logLevel
		}
		if rootFlags.logFormat != "" {
			cfg.Log.Format = rootFlags.logFormat
		}

		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		logging.Init(level, cfg.Log.Format)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootFlags.configPath, "config", "c", "", "Config file path (YAML or JSON)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.Version = version
}
