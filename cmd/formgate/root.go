package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/formgate/pkg/cli"
	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "formgate",
	Short: "Formgate - conditional logic and validation for forms",
	Long: `Formgate evaluates declarative form definitions: it decides which fields are
visible and required for the answers given so far, and validates single fields
or complete submissions against them.

Configuration is read from the --config file, then FORMGATE_* environment
variables (e.g. FORMGATE_FORMS_PATH, FORMGATE_SERVER_LISTEN_ADDRESS).`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus FORMGATE_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
}

// initConfig loads the configuration into the global config and installs the
// default logger.
func initConfig(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if logLevel != "" {
		v.Set("telemetry.logging.level", logLevel)
	}
	if verbose {
		v.Set("telemetry.logging.level", "debug")
	}

	cfg, err := config.LoadFromViper(v, cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	config.SetConfig(cfg)

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)
	return nil
}

// currentConfig returns the loaded configuration, or the defaults when no command
// hook ran.
func currentConfig() *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	return config.NewDefaultConfig()
}

func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(stdout(cmd), format, args...)
}
