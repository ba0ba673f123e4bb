// Package factory provides module creation functions for the pipeline runtime.
// It centralizes the logic for instantiating the input, the row builder, the
// filter chain, the post-pass filters and the output from their configuration
// using the module registry.
//
// # Module Creation
//
// The factory uses the registry package to look up module constructors by type.
// Built-in modules (file, the row and post-pass filters, text, jsonl) are
// registered automatically at startup. Unknown types are configuration errors.
//
// # Adding New Module Types
//
// To add a new module type, see the documentation in internal/registry.
// You do NOT need to modify this factory; just register your constructor.
package factory

import (
	"errors"
	"fmt"

	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/fields"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/internal/modules/input"
	"github.com/patrickschulz/filter-data/internal/modules/output"
	"github.com/patrickschulz/filter-data/internal/registry"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// DefaultSeparator is the input field separator when none is configured.
const DefaultSeparator = ","

// Modules holds everything a pipeline run needs.
type Modules struct {
	Input       input.Module
	Builder     *fields.Builder
	Chain       *filter.Chain
	PostFilters []filter.PostModule
	Output      output.Module
}

// Close releases the input and the output.
func (m *Modules) Close() error {
	var errs []error
	if m.Input != nil {
		errs = append(errs, m.Input.Close())
	}
	if m.Output != nil {
		errs = append(errs, m.Output.Close())
	}
	return errors.Join(errs...)
}

// CreateModules builds every module of pipeline. Nothing is opened yet; the
// input file is opened when the run starts reading.
func CreateModules(pipeline *connector.Pipeline, deps registry.Deps) (*Modules, error) {
	if pipeline == nil {
		return nil, errhandling.NewConfigurationError("pipeline configuration is nil", nil)
	}

	builder, err := CreateRowBuilder(pipeline.Input)
	if err != nil {
		return nil, err
	}
	in, err := CreateInputModule(pipeline.Input, deps)
	if err != nil {
		return nil, err
	}
	chain, err := CreateFilterChain(pipeline.Filters)
	if err != nil {
		return nil, err
	}
	post, err := CreatePostFilters(pipeline.PostFilters)
	if err != nil {
		return nil, err
	}
	out, err := CreateOutputModule(pipeline.Output, deps)
	if err != nil {
		return nil, err
	}

	return &Modules{
		Input:       in,
		Builder:     builder,
		Chain:       chain,
		PostFilters: post,
		Output:      out,
	}, nil
}

// CreateInputModule creates an input module instance from configuration.
// Uses the registry to look up the constructor by type.
func CreateInputModule(cfg *connector.ModuleConfig, deps registry.Deps) (input.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("missing input configuration", nil)
	}

	constructor := registry.GetInputConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType("input", cfg.Type)
	}
	return constructor(cfg, deps)
}

// builderParams are the field extraction keys of the input section.
type builderParams struct {
	Separator        *string `mapstructure:"separator"`
	XIndex           *int    `mapstructure:"xIndex"`
	YIndex           *int    `mapstructure:"yIndex"`
	YAsText          bool    `mapstructure:"yAsText"`
	RejectShortLines bool    `mapstructure:"rejectShortLines"`
}

// CreateRowBuilder creates the row builder from the input section. xIndex and
// yIndex are required; the separator defaults to DefaultSeparator.
func CreateRowBuilder(cfg *connector.ModuleConfig) (*fields.Builder, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("missing input configuration", nil)
	}

	var params builderParams
	if err := registry.Decode(cfg.Config, &params, false); err != nil {
		return nil, errhandling.NewConfigurationError("invalid input config", err)
	}
	if params.XIndex == nil {
		return nil, errhandling.NewConfigurationError("no xindex given", nil)
	}
	if params.YIndex == nil {
		return nil, errhandling.NewConfigurationError("no yindex given", nil)
	}
	if *params.XIndex < 0 || *params.YIndex < 0 {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("column indices must not be negative (x %d, y %d)", *params.XIndex, *params.YIndex), nil)
	}

	builder := &fields.Builder{
		Separator: DefaultSeparator,
		XIndex:    uint(*params.XIndex),
		YIndex:    uint(*params.YIndex),
		YAsText:   params.YAsText,
	}
	if params.Separator != nil {
		builder.Separator = *params.Separator
	}
	if params.RejectShortLines {
		builder.ShortLines = fields.ShortLineReject
	}
	if err := builder.Validate(); err != nil {
		return nil, errhandling.NewConfigurationError("invalid input config", err)
	}
	return builder, nil
}

// CreateFilterModules creates row filter instances from configuration, in order.
func CreateFilterModules(cfgs []connector.ModuleConfig) ([]filter.Module, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	modules := make([]filter.Module, 0, len(cfgs))
	for i, cfg := range cfgs {
		constructor := registry.GetFilterConstructor(cfg.Type)
		if constructor == nil {
			return nil, unknownType(fmt.Sprintf("filter at index %d", i), cfg.Type)
		}
		module, err := constructor(cfg, i)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// CreateFilterChain creates the filter chain. An empty list gives a chain
// that accepts every row.
func CreateFilterChain(cfgs []connector.ModuleConfig) (*filter.Chain, error) {
	modules, err := CreateFilterModules(cfgs)
	if err != nil {
		return nil, err
	}
	return filter.NewChain(modules...), nil
}

// CreatePostFilters creates post-pass filter instances from configuration, in order.
func CreatePostFilters(cfgs []connector.ModuleConfig) ([]filter.PostModule, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	modules := make([]filter.PostModule, 0, len(cfgs))
	for i, cfg := range cfgs {
		constructor := registry.GetPostFilterConstructor(cfg.Type)
		if constructor == nil {
			return nil, unknownType(fmt.Sprintf("post filter at index %d", i), cfg.Type)
		}
		module, err := constructor(cfg, i)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// CreateOutputModule creates an output module instance from configuration.
// A nil configuration selects text output with default settings.
func CreateOutputModule(cfg *connector.ModuleConfig, deps registry.Deps) (output.Module, error) {
	if cfg == nil {
		cfg = &connector.ModuleConfig{Type: output.TypeText}
	}

	constructor := registry.GetOutputConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType("output", cfg.Type)
	}
	return constructor(cfg, deps)
}

func unknownType(what, moduleType string) error {
	return errhandling.NewConfigurationError(fmt.Sprintf("unknown %s type %q", what, moduleType), nil)
}
