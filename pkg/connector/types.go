// Package connector provides public types describing a filter-data pipeline.
// This package is intended to be importable by external projects that want to
// build pipelines programmatically or inspect execution results.
package connector

import "time"

// Pipeline represents a complete column-extraction pipeline.
// It contains the modules (Input, Filters, PostFilters, Output) and metadata
// required to turn one delimited text file into a filtered (x, y) series.
type Pipeline struct {
	// ID is the unique identifier for this pipeline
	ID string `json:"id"`

	// Name is the human-readable name of the pipeline
	Name string `json:"name"`

	// Description provides additional context about the pipeline
	Description string `json:"description,omitempty"`

	// Input defines the line source and row extraction settings
	Input *ModuleConfig `json:"input"`

	// Filters is an ordered list of row-level filters, applied in order to every row
	Filters []ModuleConfig `json:"filters,omitempty"`

	// PostFilters is an ordered list of dataset-level filters, run after all rows are read
	PostFilters []ModuleConfig `json:"postFilters,omitempty"`

	// Output defines the destination and formatting of the surviving rows
	Output *ModuleConfig `json:"output"`
}

// ModuleConfig represents the configuration for a pipeline module.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "file", "scaleX", "sample", "text")
	Type string `json:"type"`

	// Config contains the module-specific parameters
	Config map[string]interface{} `json:"config"`
}

// ExecutionResult represents the result of a pipeline execution.
type ExecutionResult struct {
	// PipelineID is the ID of the executed pipeline
	PipelineID string `json:"pipelineId"`

	// Status is the execution status ("success", "error")
	Status string `json:"status"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// LinesRead is the number of input lines handed to the row builder
	LinesRead int `json:"linesRead"`

	// RowsAccepted is the number of rows accepted by the filter chain
	RowsAccepted int `json:"rowsAccepted"`

	// RowsDropped is the number of rows marked deleted by post-pass filters
	RowsDropped int `json:"rowsDropped"`

	// RowsWritten is the number of rows handed to the output module
	RowsWritten int `json:"rowsWritten"`

	// Summary describes the written rows
	Summary *Summary `json:"summary,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`
}

// Summary holds descriptive statistics of the rows that survived every filter.
type Summary struct {
	XMin  float64 `json:"xMin"`
	XMax  float64 `json:"xMax"`
	YMean float64 `json:"yMean"`
	// NumericY is the number of rows whose y value is numeric (contributes to YMean)
	NumericY int `json:"numericY"`
}

// ExecutionError contains details about an execution failure.
type ExecutionError struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Module is the module where the error occurred
	Module string `json:"module,omitempty"`

	// ErrorCategory is the classified category (configuration, parse, io, unknown)
	ErrorCategory string `json:"errorCategory,omitempty"`
}
