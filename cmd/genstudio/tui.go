package main

import (
	"io"

	"genstudio/internal/genclient"
	"genstudio/internal/session"
	"genstudio/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal shell",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		// The alternate screen owns the terminal; keep logs off it unless asked.
		if logLevel == "" {
			log = log.Output(io.Discard)
		}
		gen, err := genclient.NewGemini(cmd.Context(), cfg.APIKey,
			genclient.WithModels(cfg.Models.Image, cfg.Models.Text),
			genclient.WithLogger(log),
		)
		if err != nil {
			return err
		}
		ctrl := session.NewController(gen, session.WithLogger(log))
		_, err = tui.NewProgram(ctrl).Run()
		return err
	},
}
