package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/campusbot/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	askUser  string
	askProbe bool
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a := newApp(ctx)
		defer a.close(ctx)

		if askProbe {
			a.chain.Probe(ctx)
		}

		reply, err := a.orchestrator.Chat(ctx, askUser, strings.Join(args, " "))
		if err != nil {
			return err
		}

		source := ui.OKStyle.Render(reply.ModelUsed)
		if !reply.AIPowered {
			source = ui.WarnStyle.Render(reply.ModelUsed)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.ReplyStyle.Render(reply.Response))
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s, %d context items\n",
			ui.DescStyle.Render("answered by"), source, reply.ContextItemsUsed)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "cli", "conversation key")
	askCmd.Flags().BoolVar(&askProbe, "probe", false, "probe providers before asking")
	rootCmd.AddCommand(askCmd)
}
