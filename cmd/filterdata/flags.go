package main

import (
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/factory"
	"github.com/patrickschulz/filter-data/internal/logger"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/internal/modules/input"
	"github.com/patrickschulz/filter-data/internal/modules/output"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// filterArg is the kind of argument a filter flag takes.
type filterArg int

const (
	argNone filterArg = iota
	argFloat
	argCount
)

// filterFlag is a pflag.Value that appends a row filter to a shared list each
// time the flag appears, so the chain follows command-line order.
type filterFlag struct {
	list       *[]connector.ModuleConfig
	moduleType string
	key        string
	arg        filterArg
}

func (f *filterFlag) String() string { return "" }

func (f *filterFlag) Type() string {
	switch f.arg {
	case argFloat:
		return "float"
	case argCount:
		return "uint"
	default:
		return "bool"
	}
}

func (f *filterFlag) Set(s string) error {
	cfg := connector.ModuleConfig{Type: f.moduleType, Config: map[string]interface{}{}}
	switch f.arg {
	case argFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		cfg.Config[f.key] = v
	case argCount:
		v, err := strconv.ParseUint(s, 10, 0)
		if err != nil {
			return fmt.Errorf("invalid count %q", s)
		}
		cfg.Config[f.key] = int(v)
	default:
		on, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		if !on {
			return nil
		}
	}
	*f.list = append(*f.list, cfg)
	return nil
}

// options holds every command-line setting of a run.
type options struct {
	separator        string
	printSeparator   string
	skip             int
	removeRedundant  bool
	sample           bool
	sampleStart      float64
	sampleInterval   float64
	xPrecision       int
	yPrecision       int
	yAsString        bool
	xRelative        bool
	rejectShortLines bool
	format           string
	output           string
	configPath       string

	verbose   bool
	quiet     bool
	logFormat string
	logFile   string

	filters []connector.ModuleConfig
}

// addFilterFlags registers the order-sensitive row filter flags.
func addFilterFlags(fs *pflag.FlagSet, list *[]connector.ModuleConfig) {
	add := func(name, moduleType, key string, arg filterArg, usage string) {
		flag := fs.VarPF(&filterFlag{list: list, moduleType: moduleType, key: key, arg: arg}, name, "", usage)
		if arg == argNone {
			flag.NoOptDefVal = "true"
		}
	}

	add("xscale", filter.TypeScaleX, "factor", argFloat, "multiply x by a factor")
	add("yscale", filter.TypeScaleY, "factor", argFloat, "multiply numeric y by a factor")
	add("xshift", filter.TypeShiftX, "delta", argFloat, "add an offset to x")
	add("yshift", filter.TypeShiftY, "delta", argFloat, "add an offset to numeric y")
	add("xmin", filter.TypeXMin, "bound", argFloat, "drop rows with x below a bound")
	add("xmax", filter.TypeXMax, "bound", argFloat, "drop rows with x above a bound")
	add("y-is-integer", filter.TypeYIsInteger, "", argNone, "y values are integers, not real numbers")
	add("every-nth", filter.TypeEveryNth, "n", argCount, "only keep every nth row")
	add("digital", filter.TypeDigital, "threshold", argFloat, "map y to 1 above a threshold and 0 otherwise")
	add("y-multibit", filter.TypeYMultibit, "", argNone, "map binary y (e.g. 101) to decimal (e.g. 5)")
}

// addRunFlags registers every other flag of the root command.
func addRunFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.separator, "separator", "s", factory.DefaultSeparator, "input field separator")
	fs.StringVarP(&o.printSeparator, "print-separator", "S", output.DefaultSeparator, "output field separator")
	fs.IntVarP(&o.skip, "skip", "k", 0, "number of initial (header) lines to skip")
	fs.BoolVarP(&o.removeRedundant, "remove-redundant-points", "r", false, "remove points that repeat the previous x or y")
	fs.BoolVar(&o.sample, "sample", false, "keep one row per x interval, see --sample-start and --sample-interval")
	fs.Float64Var(&o.sampleStart, "sample-start", 0, "start of sampling (x coordinate)")
	fs.Float64Var(&o.sampleInterval, "sample-interval", 0, "interval of sampling (x coordinate)")
	fs.IntVar(&o.xPrecision, "xprecision", filter.DefaultDecimals, "decimal digits for x")
	fs.IntVar(&o.yPrecision, "yprecision", filter.DefaultDecimals, "decimal digits for y")
	fs.BoolVar(&o.yAsString, "y-as-string", false, "keep y as text, without numerical processing")
	fs.BoolVar(&o.xRelative, "x-relative", false, "print x relative to the first row")
	fs.BoolVar(&o.rejectShortLines, "reject-short-lines", false, "drop lines missing the x or y field")
	fs.StringVarP(&o.format, "format", "f", output.TypeText, "output format (text or jsonl)")
	fs.StringVarP(&o.output, "output", "o", "", "output file (default standard output)")
	fs.StringVarP(&o.configPath, "config", "c", "", "run the pipeline described in a YAML or JSON file")
}

// addLogFlags registers the logging flags shared by all commands.
func addLogFlags(fs *pflag.FlagSet, o *options) {
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging and print a run summary")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "only log errors")
	fs.StringVar(&o.logFormat, "log-format", "", "log format (human or json)")
	fs.StringVar(&o.logFile, "log-file", "", "also write JSON logs to a file")
}

// buildPipeline turns positional arguments and flags into a pipeline.
// Post-pass filters run in a fixed order: sample, remove-redundant, x-relative.
func buildPipeline(o *options, filename string, xIndex, yIndex int) *connector.Pipeline {
	pipeline := &connector.Pipeline{
		ID:   "filterdata",
		Name: "filterdata",
		Input: &connector.ModuleConfig{
			Type: input.TypeFile,
			Config: map[string]interface{}{
				"path":             filename,
				"separator":        o.separator,
				"skip":             o.skip,
				"xIndex":           xIndex,
				"yIndex":           yIndex,
				"yAsText":          o.yAsString,
				"rejectShortLines": o.rejectShortLines,
			},
		},
		Filters: o.filters,
		Output:  outputConfig(o),
	}

	if o.sample {
		pipeline.PostFilters = append(pipeline.PostFilters, connector.ModuleConfig{
			Type:   filter.TypeSample,
			Config: map[string]interface{}{"start": o.sampleStart, "interval": o.sampleInterval},
		})
	}
	if o.removeRedundant {
		pipeline.PostFilters = append(pipeline.PostFilters, connector.ModuleConfig{
			Type:   filter.TypeRemoveRedundant,
			Config: map[string]interface{}{"xDecimals": o.xPrecision, "yDecimals": o.yPrecision},
		})
	}
	if o.xRelative {
		pipeline.PostFilters = append(pipeline.PostFilters, connector.ModuleConfig{
			Type:   filter.TypeXRelative,
			Config: map[string]interface{}{},
		})
	}
	return pipeline
}

func outputConfig(o *options) *connector.ModuleConfig {
	cfg := &connector.ModuleConfig{
		Type: o.format,
		Config: map[string]interface{}{
			"xDecimals": o.xPrecision,
			"yDecimals": o.yPrecision,
			"path":      o.output,
		},
	}
	if o.format == output.TypeText {
		cfg.Config["separator"] = o.printSeparator
	}
	return cfg
}

// checkPrintSeparator rejects -S for formats that have no field separator.
func checkPrintSeparator(fs *pflag.FlagSet, format string) error {
	if fs.Changed("print-separator") && format != output.TypeText {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("--print-separator only applies to %s output, not %s", output.TypeText, format), nil)
	}
	return nil
}

// overrideOutput layers the output flags that were set on the command line
// over a pipeline file's output section. Keys whose flags were not set keep
// the file's values.
func overrideOutput(fs *pflag.FlagSet, o *options, base *connector.ModuleConfig) (*connector.ModuleConfig, error) {
	out := &connector.ModuleConfig{Type: output.TypeText, Config: map[string]interface{}{}}
	if base != nil {
		out.Type = base.Type
		maps.Copy(out.Config, base.Config)
	}

	if fs.Changed("format") {
		out.Type = o.format
	}
	if fs.Changed("output") {
		out.Config["path"] = o.output
	}
	if fs.Changed("xprecision") {
		out.Config["xDecimals"] = o.xPrecision
	}
	if fs.Changed("yprecision") {
		out.Config["yDecimals"] = o.yPrecision
	}
	if fs.Changed("print-separator") {
		out.Config["separator"] = o.printSeparator
	}

	if err := checkPrintSeparator(fs, out.Type); err != nil {
		return nil, err
	}
	if _, ok := out.Config["separator"]; ok && out.Type != output.TypeText {
		logger.Debug("dropping text separator for output format",
			slog.String("format", out.Type),
			slog.Any("separator", out.Config["separator"]))
		delete(out.Config, "separator")
	}
	return out, nil
}
