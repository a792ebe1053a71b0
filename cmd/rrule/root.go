package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/cyp0633/librrule/recurrence"
)

// configEnv names the environment variable holding the default engine config path.
const configEnv = "RRULE_CONFIG"

// RootOptions holds flags shared by every subcommand.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string

	logger *slog.Logger
	config recurrence.EngineConfig
}

// ValidFormats lists the output formats.
var ValidFormats = []string{"text", "json", "ics", "xcal"}

// NewRootCommand creates the rrule command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "rrule",
		Short:         "Parse recurrence rules and expand their occurrences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)

			opts.config = recurrence.DefaultEngineConfig
			if opts.ConfigPath != "" {
				config, err := recurrence.LoadConfig(opts.ConfigPath)
				if err != nil {
					return err
				}
				opts.config = config
				opts.logger.Debug("loaded engine config", "path", opts.ConfigPath)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "text", "output format (text|json|ics|xcal)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", os.Getenv(configEnv), "engine config YAML file (default $"+configEnv+")")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// fail logs err; the root command silences cobra's own error output.
func (o *RootOptions) fail(err error) error {
	if err != nil && o.logger != nil {
		o.logger.Error("command failed", "error", err)
	}
	return err
}
