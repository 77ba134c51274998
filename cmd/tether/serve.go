package main

import (
	"os"

	"github.com/aretw0/tether"
	"github.com/aretw0/tether/internal/cli"
	"github.com/aretw0/tether/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP bridge for a webview frontend",
	Long: `Starts the host and exposes its commands as a JSON API. When a frontend
directory is configured it is served at /. Prometheus metrics are served at
/metrics unless disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if l, _ := cmd.Flags().GetString("listen"); l != "" {
			settings.Listen = l
		}
		if d, _ := cmd.Flags().GetString("frontend"); d != "" {
			settings.FrontendDir = d
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		if isTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, tether.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := rt.Serve(ctx, settings.Listen); err != nil {
			return err
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Info("tether server stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (default from config: 127.0.0.1:8080)")
	serveCmd.Flags().String("frontend", "", "Directory of static frontend files to serve at /")
}
