package main

import (
	"time"

	"github.com/aretw0/tether/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent invocations",
	Long: `Shows the invocation journal, newest first. Only persistent backends
(redis, loam) carry history across runs of the CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		recs, err := rt.Host.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if handled, err := writeStructured(out, format, recs); handled {
			return err
		}
		if format == formatMarkdown {
			return writeMarkdown(out, tui.HistoryMarkdown(recs))
		}

		tbl := newTable(out, "Started", "Command", "Exit", "Duration", "Error")
		for _, r := range recs {
			tbl.AddRow(r.StartedAt.Local().Format(time.DateTime), r.Command, r.ExitCode,
				r.Duration.Round(time.Millisecond), r.Error)
		}
		tbl.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of records to show (0 = all)")
	addOutputFlag(historyCmd)
}
