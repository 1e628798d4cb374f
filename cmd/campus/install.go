package main

import (
	"github.com/sandevgo/campusbot/internal/config"
	"github.com/sandevgo/campusbot/internal/service/installer"
	"github.com/sandevgo/campusbot/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Create the CampusBot configuration interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		logger.Info().
			Str("runtime", runtimePath).
			Strs("providers", state.Providers).
			Bool("telegram", state.Env.EnableTelegram).
			Msg("configuration written")
		logger.Info().Msg("installation complete, run 'campus probe' to check providers and 'campus serve' to start")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
