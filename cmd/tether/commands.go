package main

import (
	"github.com/aretw0/tether/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:     "commands",
	Aliases: []string{"ls"},
	Short:   "List the registered commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		descs := rt.Host.Commands()
		out := cmd.OutOrStdout()

		if handled, err := writeStructured(out, format, descs); handled {
			return err
		}
		if format == formatMarkdown {
			return writeMarkdown(out, tui.CommandsMarkdown(descs))
		}

		tbl := newTable(out, "Name", "Kind", "Exclusive", "Description")
		for _, d := range descs {
			tbl.AddRow(d.Name, d.Kind, d.Exclusive, d.Description)
		}
		tbl.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	addOutputFlag(commandsCmd)
}
