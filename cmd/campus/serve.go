package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/campusbot/pkg/log"
	"github.com/sandevgo/campusbot/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background services",
	Long:  `Probes the provider chain, then serves the chat API, the keep-alive jobs and, when enabled, the Telegram bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting campusbot")

		services := NewServices(ctx)

		srv.StartServices(ctx, stop, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("campusbot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
