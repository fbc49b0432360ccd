package main

import (
	"os"

	"genstudio/internal/config"
	"genstudio/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "genstudio",
	Short: "Image generation, image analysis and file Q&A on Gemini",
	Long: `genstudio drives three Gemini interaction modes from a browser, a terminal or a script.

Examples:
  $ genstudio serve --port 8080
  $ genstudio tui
  $ genstudio ask --mode image -p "a red circle" -o circle.png
  $ genstudio ask --mode vision -p "What is this?" -i photo.jpg
  $ genstudio ask --mode file -p "Summarize" -f notes.txt`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, tuiCmd, askCmd)
}

// loadConfig loads the config and builds the process logger. A missing API key
// is returned as an error: every command needs the backend.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log := logging.New(os.Stderr, cfg.Env, level)
	if err != nil {
		log.Error().Err(err).Msg("configuration error")
		return nil, log, err
	}
	return cfg, log, nil
}
