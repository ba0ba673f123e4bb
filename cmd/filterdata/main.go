// Package main provides the CLI entry point for filterdata.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/patrickschulz/filter-data/internal/cli"
	"github.com/patrickschulz/filter-data/internal/config"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/factory"
	"github.com/patrickschulz/filter-data/internal/logger"
	"github.com/patrickschulz/filter-data/internal/registry"
	"github.com/patrickschulz/filter-data/internal/runtime"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], env{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
	stop()
	os.Exit(code)
}

// env is the process environment a command runs in.
type env struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// execute runs the command line args and returns the process exit code.
func execute(ctx context.Context, args []string, e env) int {
	o := &options{}
	root := newRootCmd(o, e)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	logger.CloseLogFile()
	if err == nil {
		return errhandling.ExitOK
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(e.stderr, "filterdata: %v\n", err)
	}
	return errhandling.ExitCode(err)
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

func newRootCmd(o *options, e env) *cobra.Command {
	root := &cobra.Command{
		Use:   "filterdata <filename> <xindex> <yindex>",
		Short: "filterdata - extract and filter columns of delimited data",
		Long: `filterdata reads a delimited text file, takes the x and y values from two
columns, runs them through a chain of filters and prints the surviving pairs.

Filters given as flags (--xscale, --yscale, --xshift, --yshift, --xmin, --xmax,
--y-is-integer, --every-nth, --digital, --y-multibit) are applied in the order
they appear on the command line. A filename of "-" reads standard input.

Exit codes:
  0 - Success
  1 - Configuration errors (missing arguments, invalid flags or pipeline files)
  2 - Parse errors (invalid JSON/YAML pipeline file)
  3 - Runtime errors (unreadable input, unwritable output)

Examples:
  # x from column 0, y from column 2, header line skipped
  filterdata -k 1 data.csv 0 2

  # scale x to milliseconds, keep x >= 0, one point per 10 ms
  filterdata --xscale 1000 --xmin 0 --sample --sample-interval 10 data.csv 0 1

  # run a pipeline file
  filterdata --config pipeline.yaml`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          positionalArgs(o),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return configureLogging(o, e)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, o, e, args)
		},
	}

	root.SetIn(e.stdin)
	root.SetOut(e.stderr)
	root.SetErr(e.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errhandling.NewConfigurationError("invalid command line", err)
	})

	flags := root.Flags()
	flags.SetInterspersed(true)
	addFilterFlags(flags, &o.filters)
	addRunFlags(flags, o)
	addLogFlags(root.PersistentFlags(), o)

	root.AddCommand(newValidateCmd(o, e))
	return root
}

// positionalArgs checks for <filename> <xindex> <yindex>, which --config replaces.
func positionalArgs(o *options) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if o.configPath != "" {
			if len(args) > 0 {
				return errhandling.NewConfigurationError("--config cannot be combined with positional arguments", nil)
			}
			return nil
		}
		switch len(args) {
		case 0:
			return errhandling.NewConfigurationError("no filename given", nil)
		case 1:
			return errhandling.NewConfigurationError("no xindex given", nil)
		case 2:
			return errhandling.NewConfigurationError("no yindex given", nil)
		case 3:
			return nil
		default:
			return errhandling.NewConfigurationError(fmt.Sprintf("unexpected argument %q", args[3]), nil)
		}
	}
}

// configureLogging applies the environment first and the flags on top.
func configureLogging(o *options, e env) error {
	settings, err := config.LoadEnv()
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(settings.LogLevel)
	if err != nil {
		return errhandling.NewConfigurationError("invalid FILTERDATA_LOG_LEVEL", err)
	}
	switch {
	case o.verbose:
		level = slog.LevelDebug
	case o.quiet:
		level = slog.LevelError
	}

	formatName := settings.LogFormat
	if o.logFormat != "" {
		formatName = o.logFormat
	}
	format, err := logger.ParseFormat(formatName)
	if err != nil {
		return errhandling.NewConfigurationError("invalid log format", err)
	}

	file := settings.LogFile
	if o.logFile != "" {
		file = o.logFile
	}

	logger.SetOutput(e.stderr)
	if err := logger.Configure(logger.Options{Level: level, Format: format, File: file}); err != nil {
		return errhandling.NewIOError("could not open log file "+file, err)
	}
	return nil
}

func parseIndex(name, s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s %q", name, s), err)
	}
	return int(v), nil
}

// loadPipeline builds the pipeline from a pipeline file or from the command line.
func loadPipeline(cmd *cobra.Command, o *options, e env, args []string) (*connector.Pipeline, error) {
	if o.configPath == "" {
		if err := checkPrintSeparator(cmd.Flags(), o.format); err != nil {
			return nil, err
		}
		xIndex, err := parseIndex("xindex", args[1])
		if err != nil {
			return nil, err
		}
		yIndex, err := parseIndex("yindex", args[2])
		if err != nil {
			return nil, err
		}
		return buildPipeline(o, args[0], xIndex, yIndex), nil
	}

	loader := config.NewLoader(e.fs)
	result, err := loader.Validate(o.configPath)
	if err != nil {
		cli.PrintConfigResult(e.stderr, result, o.verbose, o.quiet)
		return nil, &reportedError{err: err}
	}
	pipeline, err := config.ConvertToPipeline(result.Data)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid pipeline in "+o.configPath, err)
	}

	// Filter flags extend the file's chain; output flags override single keys
	// of its output section.
	pipeline.Filters = append(pipeline.Filters, o.filters...)
	pipeline.Output, err = overrideOutput(cmd.Flags(), o, pipeline.Output)
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func runPipeline(cmd *cobra.Command, o *options, e env, args []string) error {
	pipeline, err := loadPipeline(cmd, o, e, args)
	if err != nil {
		return err
	}

	if o.verbose {
		fmt.Fprintln(e.stderr, "Running pipeline:")
		cli.PrintConfigSummary(e.stderr, pipeline)
	}

	modules, err := factory.CreateModules(pipeline, registry.Deps{
		Fs:     e.fs,
		Stdin:  e.stdin,
		Stdout: e.stdout,
	})
	if err != nil {
		return err
	}

	executor := runtime.NewExecutorWithModules(
		modules.Input,
		modules.Builder,
		modules.Chain,
		modules.PostFilters,
		modules.Output,
	)
	result, err := executor.ExecuteWithContext(cmd.Context(), pipeline)
	cli.PrintExecutionResult(e.stderr, result, err, cli.OutputOptions{Verbose: o.verbose, Quiet: o.quiet})
	if err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func newValidateCmd(o *options, e env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a pipeline file",
		Long: `Validate a pipeline file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Pipeline file is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)
  3 - The file could not be read`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errhandling.NewConfigurationError("validate requires exactly one pipeline file", nil)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			result, err := config.NewLoader(e.fs).Validate(path)
			if err != nil {
				cli.PrintConfigResult(e.stderr, result, o.verbose, o.quiet)
				return &reportedError{err: err}
			}

			pipeline, err := config.ConvertToPipeline(result.Data)
			if err != nil {
				return errhandling.NewConfigurationError("invalid pipeline in "+path, err)
			}
			if !o.quiet {
				fmt.Fprintf(e.stderr, "✓ Pipeline file is valid (format: %s)\n", result.Format)
				if o.verbose {
					cli.PrintConfigSummary(e.stderr, pipeline)
				}
			}
			return nil
		},
	}
}
