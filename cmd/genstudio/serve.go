package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"genstudio/internal/config"
	"genstudio/internal/gateway/app"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser shell and its session API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Port = config.NormalizePort(servePort)
		}

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize app")
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("server error")
				return err
			}
			return nil
		}

		log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return err
		}
		log.Info().Msg("server exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen address, e.g. 8080 or :8080 (overrides PORT)")
}
