package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/internal/transport/mcp"
	"github.com/sandevgo/campusbot/pkg/log"
	"github.com/spf13/cobra"
)

var mcpProbe bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve CampusBot as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout carries the protocol
		ctx, flushLog := log.NewContextWithOptions(ctx, log.Options{
			Debug: debug || config.IsDebug(),
			Out:   os.Stderr,
		})
		defer flushLog()

		a := newApp(ctx)
		defer a.close(ctx)

		if mcpProbe {
			a.chain.Probe(ctx)
		}

		return mcp.NewServer(a.orchestrator, a.cfg.ThrottleCooldown, os.Stdin, os.Stdout).Start(ctx)
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpProbe, "probe", true, "probe providers on startup")
	rootCmd.AddCommand(mcpCmd)
}
