package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/tether/internal/cli"
	"github.com/aretw0/tether/internal/config"
	"github.com/aretw0/tether/internal/logging"
	"github.com/spf13/cobra"
)

var (
	settings  *config.Settings
	logger    *slog.Logger
	logCloser io.Closer = io.NopCloser(nil)
)

var rootCmd = &cobra.Command{
	Use:   "tether",
	Short: "Tether hosts commands a desktop UI can invoke",
	Long: `Tether runs named commands (by default "run_python", which executes
python3 app.py in the base directory) and returns their output to a frontend
over HTTP, to AI agents over MCP, or directly on the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logCloser.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./tether.yaml)")
	rootCmd.PersistentFlags().String("base-dir", "", "Directory scripts are resolved against")
	rootCmd.PersistentFlags().String("commands", "", "Commands file, relative to the base dir")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Int("max-concurrent", config.DefaultMaxConcurrent, "Maximum in-flight invocations (0 = unlimited)")
	rootCmd.PersistentFlags().String("history", "", "History backend: memory, redis, loam or none")
}

func loadSettings(cmd *cobra.Command, args []string) error {
	v := config.New()
	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"base_dir":        "base-dir",
		"commands_file":   "commands",
		"log.level":       "log-level",
		"log.format":      "log-format",
		"max_concurrent":  "max-concurrent",
		"history.backend": "history",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	path, _ := flags.GetString("config")
	s, err := config.Load(v, path)
	if err != nil {
		return err
	}

	l, closer, err := logging.NewWithOptions(logging.Options{
		Level:  s.Log.Level,
		Format: s.Log.Format,
		File:   s.Log.File,
	})
	if err != nil {
		return fmt.Errorf("invalid log settings: %w", err)
	}

	settings, logger, logCloser = s, l, closer
	if s.File != "" {
		logger.Debug("config loaded", "file", s.File)
	}
	return nil
}

// newRuntime wires the host for the current settings.
func newRuntime() (*cli.Runtime, error) {
	return cli.NewRuntime(settings, logger)
}
