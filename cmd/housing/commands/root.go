// Package commands implements the housing CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezoic/houseprice/config"
	"github.com/ezoic/houseprice/internal/printer"
	"github.com/ezoic/houseprice/pkg/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// NewRootCommand builds the housing command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "housing",
		Short: "Train and serve an Ames house price model",
		Long: `housing trains an ordinary least squares model on the Ames housing CSV,
persists the fitted model and preprocessor, and serves single-house price
predictions from the command line or a web form.

Settings come from housing.yml (see --config); command flags override it.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultFile, "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console or json (overrides log.format)")

	root.AddCommand(newTrainCommand(opts), newPredictCommand(opts), newServeCommand(opts))
	return root
}

// load reads the configuration and sets up logging. The default config file is
// optional; a file named with --config must exist.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(o.configPath, !cmd.Flags().Changed("config"))
	if err != nil {
		return printer.Error("Failed to load configuration", err.Error(), []string{
			fmt.Sprintf("Check %s or omit --config to use the defaults", o.configPath),
		})
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return printer.Error("Invalid configuration", err.Error(), nil)
	}
	if err := log.SetupLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return printer.Error("Failed to set up logging", err.Error(), nil)
	}
	o.cfg = cfg
	return nil
}

// SetVersionInfo sets the version reported by --version.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

// Execute runs the CLI with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
