package main

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/tether/internal/cli"
	"github.com/aretw0/tether/internal/presentation/tui"
	"github.com/aretw0/tether/pkg/domain"
	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke [command]",
	Short: "Invoke a command once and print its output",
	Long: `Invokes a registered command (default: run_python) and writes its
standard output verbatim. With --pretty and a terminal, a rendered summary
including exit code and stderr is shown instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := domain.DefaultCommandName
		if len(args) > 0 {
			name = args[0]
		}
		pretty, _ := cmd.Flags().GetBool("pretty")
		format, _ := cmd.Flags().GetString("output")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		var invokeCtx context.Context = ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			invokeCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := rt.Host.Invoke(invokeCtx, name)
		if err != nil {
			if sig := ctx.Signal(); sig != nil {
				return fmt.Errorf("interrupted by %v: %w", sig, err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if handled, err := writeStructured(out, format, res); handled {
			return err
		}
		if format == formatMarkdown || (pretty && isTerminal(out)) {
			return writeMarkdown(out, tui.ResultMarkdown(res))
		}
		_, err = io.WriteString(out, res.Output)
		return err
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().Bool("pretty", false, "Render a summary when stdout is a terminal")
	invokeCmd.Flags().Duration("timeout", 0, "Abort the invocation after this long (0 = no limit)")
	addOutputFlag(invokeCmd)
}
