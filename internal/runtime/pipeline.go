// Package runtime provides the pipeline execution engine.
// It orchestrates the input, the row builder, the filter chain, the post-pass
// filters and the output module.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/fields"
	"github.com/patrickschulz/filter-data/internal/logger"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/internal/modules/input"
	"github.com/patrickschulz/filter-data/internal/modules/output"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// Error codes for pipeline execution errors
const (
	ErrCodeInputFailed  = "INPUT_FAILED"
	ErrCodeOutputFailed = "OUTPUT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Execution stages, as reported in logs.
const (
	StageInput      = "input"
	StageFilter     = "filter"
	StagePostFilter = "postFilter"
	StageOutput     = "output"
)

// Common errors
var (
	// ErrNilPipeline is returned when pipeline configuration is nil
	ErrNilPipeline = errors.New("pipeline configuration is nil")

	// ErrNilInputModule is returned when input module is nil
	ErrNilInputModule = errors.New("input module is nil")

	// ErrNilRowBuilder is returned when the row builder is nil
	ErrNilRowBuilder = errors.New("row builder is nil")

	// ErrNilOutputModule is returned when output module is nil
	ErrNilOutputModule = errors.New("output module is nil")
)

// Executor is responsible for executing pipeline configurations.
// It orchestrates the execution flow:
// Input → Row Builder → Filter Chain → Dataset → Post-Pass Filters → Output.
//
// Lines are turned into rows and run through the chain while they are read;
// accepted rows are buffered in a Dataset because post-pass filters need all
// of them before anything is written.
type Executor struct {
	inputModule  input.Module
	builder      *fields.Builder
	chain        *filter.Chain
	postFilters  []filter.PostModule
	outputModule output.Module
}

// NewExecutorWithModules creates a new pipeline executor with all modules configured.
// This is the primary constructor for dependency injection.
//
// Parameters:
//   - inputModule: the line source
//   - builder: extracts x and y from each line
//   - chain: the row filters (nil accepts every row)
//   - postFilters: dataset filters run after reading, in order (can be nil)
//   - outputModule: writes the live rows
func NewExecutorWithModules(
	inputModule input.Module,
	builder *fields.Builder,
	chain *filter.Chain,
	postFilters []filter.PostModule,
	outputModule output.Module,
) *Executor {
	if chain == nil {
		chain = filter.NewChain()
	}
	return &Executor{
		inputModule:  inputModule,
		builder:      builder,
		chain:        chain,
		postFilters:  postFilters,
		outputModule: outputModule,
	}
}

// stageTimings holds timing measurements for each execution stage
type stageTimings struct {
	inputDuration  time.Duration
	filterDuration time.Duration
	outputDuration time.Duration
}

// readResult holds the outcome of the read stage.
type readResult struct {
	dataset    *dataset.Dataset
	linesRead  int
	rowsBuilt  int
	shortLines int
}

// Execute runs a pipeline configuration with a background context.
//
// For cancellation support, use ExecuteWithContext instead.
func (e *Executor) Execute(pipeline *connector.Pipeline) (*connector.ExecutionResult, error) {
	return e.ExecuteWithContext(context.Background(), pipeline)
}

// ExecuteWithContext runs a pipeline configuration with the given context.
// The context is checked while reading and writing, so a cancelled run stops
// within a batch of lines.
//
// Execution flow:
//  1. Validate the executor's modules
//  2. Read lines, build rows and apply the filter chain; keep accepted rows
//  3. Run the post-pass filters over the whole dataset
//  4. Write the live rows with the output module
//  5. Return ExecutionResult with counters and a summary of the written rows
//
// Resource Management:
//   - Input module: closed as soon as reading completes (even on error).
//   - Output module: closed at the end of execution. A close error (e.g. a
//     failed final flush) fails the run.
//
// Returns both result and error for comprehensive error handling.
func (e *Executor) ExecuteWithContext(ctx context.Context, pipeline *connector.Pipeline) (result *connector.ExecutionResult, err error) {
	startedAt := time.Now()
	result = e.newErrorResult(startedAt)
	var timings stageTimings

	if err := e.validateExecution(pipeline, result); err != nil {
		if pipeline != nil {
			execCtx := e.executionContext(pipeline, "")
			logger.LogExecutionStart(execCtx)
			logger.LogExecutionEnd(execCtx, StatusError, 0, time.Since(startedAt))
		}
		return result, err
	}
	result.PipelineID = pipeline.ID

	execCtx := e.executionContext(pipeline, "")
	logger.LogExecutionStart(execCtx)

	outputClosed := false
	defer func() {
		if outputClosed {
			return
		}
		e.closeModule(pipeline.ID, StageOutput, e.outputModule)
	}()

	read, inputDuration, err := e.executeInput(ctx, pipeline, result)
	timings.inputDuration = inputDuration

	e.closeModule(pipeline.ID, StageInput, e.inputModule)
	e.inputModule = nil // Prevent double-close

	if err != nil {
		logger.LogExecutionEnd(execCtx, StatusError, 0, time.Since(startedAt))
		return result, err
	}
	e.logFilterStats(pipeline, read.rowsBuilt)

	timings.filterDuration = e.executePostFilters(pipeline, read.dataset, result)

	outputDuration, err := e.executeOutputWithResult(ctx, pipeline, read.dataset, result)
	timings.outputDuration = outputDuration
	if err == nil {
		outputClosed = true
		if closeErr := e.outputModule.Close(); closeErr != nil {
			err = fmt.Errorf("closing output module: %w", closeErr)
			result.CompletedAt = time.Now()
			result.Error = buildExecutionError(ErrCodeOutputFailed, StageOutput, closeErr)
		}
	}
	if err != nil {
		logger.LogExecutionEnd(execCtx, StatusError, result.RowsWritten, time.Since(startedAt))
		return result, err
	}

	result.Summary = Summarize(read.dataset)
	e.finalizeSuccessWithMetrics(result, startedAt, pipeline, timings)
	return result, nil
}

// newErrorResult creates a new ExecutionResult initialized with error status.
func (e *Executor) newErrorResult(startedAt time.Time) *connector.ExecutionResult {
	return &connector.ExecutionResult{
		StartedAt: startedAt,
		Status:    StatusError,
	}
}

// buildExecutionError creates an ExecutionError with classified category.
func buildExecutionError(code, module string, err error) *connector.ExecutionError {
	return &connector.ExecutionError{
		Code:          code,
		Message:       err.Error(),
		Module:        module,
		ErrorCategory: string(errhandling.GetErrorCategory(err)),
	}
}

// validateExecution validates the pipeline and modules before execution.
func (e *Executor) validateExecution(pipeline *connector.Pipeline, result *connector.ExecutionResult) error {
	var err error
	var module string
	switch {
	case pipeline == nil:
		err = ErrNilPipeline
	case e.inputModule == nil:
		err, module = ErrNilInputModule, StageInput
	case e.builder == nil:
		err, module = ErrNilRowBuilder, StageInput
	case e.outputModule == nil:
		err, module = ErrNilOutputModule, StageOutput
	default:
		return nil
	}

	attrs := []any{}
	if pipeline != nil {
		attrs = append(attrs, slog.String("pipeline_id", pipeline.ID))
	}
	logger.Error("pipeline execution failed: "+err.Error(), attrs...)
	result.CompletedAt = time.Now()
	result.Error = buildExecutionError(ErrCodeInvalidInput, module, err)
	return err
}

// executionContext builds the logging context of a stage. The filter index
// is unset.
func (e *Executor) executionContext(pipeline *connector.Pipeline, stage string) logger.ExecutionContext {
	execCtx := logger.ExecutionContext{
		PipelineID:   pipeline.ID,
		PipelineName: pipeline.Name,
		Stage:        stage,
		FilterIndex:  -1,
	}
	if pipeline.Input != nil {
		execCtx.Source = sourceOf(pipeline.Input)
	}
	return execCtx
}

func sourceOf(cfg *connector.ModuleConfig) string {
	path, _ := cfg.Config["path"].(string)
	return path
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(pipelineID, moduleName string, m moduleCloser) {
	if m == nil {
		return
	}
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("pipeline_id", pipelineID),
			slog.String("module", moduleName),
			slog.String("error", err.Error()),
		)
	}
}

// executeInput reads every line, builds its row and runs the filter chain.
// Accepted rows are appended to the returned dataset.
func (e *Executor) executeInput(ctx context.Context, pipeline *connector.Pipeline, result *connector.ExecutionResult) (readResult, time.Duration, error) {
	stageCtx := e.executionContext(pipeline, StageInput)
	stageCtx.ModuleType = pipeline.Input.Type
	logger.LogStageStart(stageCtx)

	read := readResult{dataset: dataset.New(0)}
	inputStartTime := time.Now()
	linesRead, err := e.inputModule.ReadLines(ctx, func(_ int, line string) error {
		row, ok := e.builder.Build(line)
		if !ok {
			read.shortLines++
			return nil
		}
		read.rowsBuilt++
		if e.chain.Apply(&row) {
			read.dataset.Append(row)
		}
		return nil
	})
	inputDuration := time.Since(inputStartTime)

	read.linesRead = linesRead
	result.LinesRead = linesRead
	result.RowsAccepted = read.dataset.Len()

	if err != nil {
		result.CompletedAt = time.Now()
		result.Error = buildExecutionError(ErrCodeInputFailed, StageInput, err)
		logger.LogStageEnd(stageCtx, linesRead, inputDuration, &logger.ExecutionError{
			Code:    ErrCodeInputFailed,
			Message: err.Error(),
		})
		return read, inputDuration, fmt.Errorf("executing input module: %w", err)
	}

	if read.shortLines > 0 {
		logger.Debug("short lines rejected",
			slog.String("pipeline_id", pipeline.ID),
			slog.Int("count", read.shortLines),
		)
	}
	logger.LogStageEnd(stageCtx, linesRead, inputDuration, nil)
	return read, inputDuration, nil
}

// logFilterStats logs the counters of every filter in the chain.
func (e *Executor) logFilterStats(pipeline *connector.Pipeline, rows int) {
	for _, stat := range e.chain.Stats(rows) {
		stageCtx := e.executionContext(pipeline, StageFilter)
		stageCtx.ModuleType = stat.Name
		stageCtx.FilterIndex = stat.Index
		logger.LogFilterStats(stageCtx, stat.Accepted, stat.Rejected, stat.Skipped)
	}
}

// executePostFilters runs the post-pass filters in order and records how many
// rows they dropped. Post-pass filters cannot fail.
func (e *Executor) executePostFilters(pipeline *connector.Pipeline, ds *dataset.Dataset, result *connector.ExecutionResult) time.Duration {
	startTime := time.Now()
	for i, m := range e.postFilters {
		stageCtx := e.executionContext(pipeline, StagePostFilter)
		stageCtx.ModuleType = m.Name()
		stageCtx.FilterIndex = i
		logger.LogStageStart(stageCtx)

		filterStartTime := time.Now()
		dropped := m.Process(ds)
		result.RowsDropped += dropped

		logger.LogStageEnd(stageCtx, ds.LiveLen(), time.Since(filterStartTime), nil)
	}
	return time.Since(startTime)
}

// executeOutputWithResult writes the live rows and updates result.
// Returns duration and error.
func (e *Executor) executeOutputWithResult(ctx context.Context, pipeline *connector.Pipeline, ds *dataset.Dataset, result *connector.ExecutionResult) (time.Duration, error) {
	stageCtx := e.executionContext(pipeline, StageOutput)
	if pipeline.Output != nil {
		stageCtx.ModuleType = pipeline.Output.Type
	}
	logger.LogStageStart(stageCtx)

	outputStartTime := time.Now()
	written, err := e.outputModule.Send(ctx, ds)
	outputDuration := time.Since(outputStartTime)
	result.RowsWritten = written

	if err != nil {
		result.CompletedAt = time.Now()
		result.Error = buildExecutionError(ErrCodeOutputFailed, StageOutput, err)
		logger.LogStageEnd(stageCtx, written, outputDuration, &logger.ExecutionError{
			Code:    ErrCodeOutputFailed,
			Message: err.Error(),
		})
		return outputDuration, fmt.Errorf("executing output module: %w", err)
	}

	logger.LogStageEnd(stageCtx, written, outputDuration, nil)
	return outputDuration, nil
}

// finalizeSuccessWithMetrics marks the execution as successful and logs completion with detailed metrics.
func (e *Executor) finalizeSuccessWithMetrics(result *connector.ExecutionResult, startedAt time.Time, pipeline *connector.Pipeline, timings stageTimings) {
	result.Status = StatusSuccess
	result.CompletedAt = time.Now()
	result.Error = nil

	totalDuration := time.Since(startedAt)

	var linesPerSecond float64
	if result.LinesRead > 0 && totalDuration > 0 {
		linesPerSecond = float64(result.LinesRead) / totalDuration.Seconds()
	}

	ctx := e.executionContext(pipeline, "")
	metrics := logger.ExecutionMetrics{
		TotalDuration:  totalDuration,
		InputDuration:  timings.inputDuration,
		FilterDuration: timings.filterDuration,
		OutputDuration: timings.outputDuration,
		LinesRead:      result.LinesRead,
		RowsAccepted:   result.RowsAccepted,
		RowsDropped:    result.LinesRead - result.RowsWritten,
		RowsWritten:    result.RowsWritten,
		LinesPerSecond: linesPerSecond,
	}

	logger.LogExecutionEnd(ctx, StatusSuccess, result.RowsWritten, totalDuration)
	logger.LogMetrics(ctx, metrics)
}

// Metrics returns the execution metrics of a finished run, for display.
func Metrics(result *connector.ExecutionResult) logger.ExecutionMetrics {
	if result == nil {
		return logger.ExecutionMetrics{}
	}
	total := result.CompletedAt.Sub(result.StartedAt)
	m := logger.ExecutionMetrics{
		TotalDuration: total,
		LinesRead:     result.LinesRead,
		RowsAccepted:  result.RowsAccepted,
		RowsDropped:   result.LinesRead - result.RowsWritten,
		RowsWritten:   result.RowsWritten,
	}
	if result.LinesRead > 0 && total > 0 {
		m.LinesPerSecond = float64(result.LinesRead) / total.Seconds()
	}
	return m
}
