package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/patrickschulz/filter-data/internal/logger"
	"github.com/patrickschulz/filter-data/internal/runtime"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintExecutionResult displays the pipeline execution result. Failures are
// always printed; the run summary only in verbose mode.
func PrintExecutionResult(w io.Writer, result *connector.ExecutionResult, err error, opts OutputOptions) {
	if err != nil {
		if result != nil && result.Error != nil {
			fmt.Fprintf(w, "✗ %s\n", result.Error.Message)
			if opts.Verbose && result.Error.Module != "" {
				fmt.Fprintf(w, "  Module: %s\n", result.Error.Module)
				fmt.Fprintf(w, "  Category: %s\n", result.Error.ErrorCategory)
			}
			return
		}
		fmt.Fprintf(w, "✗ %v\n", err)
		return
	}

	if result == nil || opts.Quiet || !opts.Verbose {
		return
	}

	fmt.Fprintf(w, "✓ %s\n", logger.FormatMetricsHuman(runtime.Metrics(result)))
	fmt.Fprintf(w, "  Rows accepted by filters: %s\n", humanize.Comma(int64(result.RowsAccepted)))
	if result.RowsDropped > 0 {
		fmt.Fprintf(w, "  Rows removed by post filters: %s\n", humanize.Comma(int64(result.RowsDropped)))
	}
	PrintSummary(w, result.Summary)
}

// PrintSummary prints the x range and y mean of the written rows.
func PrintSummary(w io.Writer, s *connector.Summary) {
	if s == nil {
		fmt.Fprintln(w, "  No rows written")
		return
	}
	fmt.Fprintf(w, "  x range: [%s, %s]\n", humanize.Ftoa(s.XMin), humanize.Ftoa(s.XMax))
	if s.NumericY > 0 {
		fmt.Fprintf(w, "  y mean: %s (%s numeric values)\n", humanize.Ftoa(s.YMean), humanize.Comma(int64(s.NumericY)))
	}
}

// PrintConfigSummary prints the pipeline name, description and module list.
func PrintConfigSummary(w io.Writer, pipeline *connector.Pipeline) {
	if pipeline == nil {
		return
	}

	fmt.Fprintf(w, "  Pipeline: %s\n", pipeline.Name)
	if pipeline.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", pipeline.Description)
	}
	if pipeline.Input != nil {
		fmt.Fprintf(w, "  Input: %s\n", pipeline.Input.Type)
	}
	for i, f := range pipeline.Filters {
		fmt.Fprintf(w, "  Filter %d: %s\n", i, f.Type)
	}
	for i, f := range pipeline.PostFilters {
		fmt.Fprintf(w, "  Post filter %d: %s\n", i, f.Type)
	}
	if pipeline.Output != nil {
		fmt.Fprintf(w, "  Output: %s\n", pipeline.Output.Type)
	}
}
