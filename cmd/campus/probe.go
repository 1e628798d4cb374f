package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/campusbot/internal/service/ui"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which AI providers answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a := newApp(ctx)
		defer a.close(ctx)

		working := make(map[string]bool)
		for _, d := range a.chain.Probe(ctx) {
			working[d.Name] = true
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("PROVIDER CHAIN"))
		for i, e := range a.entries {
			d := e.Descriptor

			var status string
			switch {
			case working[d.Name]:
				status = ui.OKStyle.Render("working")
			case d.Available:
				status = ui.ErrorStyle.Render("no response")
			default:
				status = ui.WarnStyle.Render("not configured")
			}
			fmt.Fprintf(out, "  %d. %-20s %s %s\n", i+1, d.Name, ui.DescStyle.Render(string(d.Kind)+"/"+d.Model), status)
		}

		if a.ledger != nil {
			stats, err := a.ledger.AttemptStats(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				return err
			}
			if len(stats) > 0 {
				fmt.Fprintln(out, "\n"+ui.TitleStyle.Render("LAST 24H"))
			}
			for _, s := range stats {
				fmt.Fprintf(out, "  %-20s total %d, ok %d, rate limited %d, failed %d\n",
					s.Provider, s.Total, s.OK, s.RateLimited, s.Failed)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
