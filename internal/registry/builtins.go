// Package registry provides module registries for the filter-data runtime.
// This file registers all built-in modules during initialization.
package registry

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"

	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/internal/modules/input"
	"github.com/patrickschulz/filter-data/internal/modules/output"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

func init() {
	RegisterBuiltins()
}

// WithDefaults returns d with unset fields replaced by the operating system
// filesystem and standard streams.
func (d Deps) WithDefaults() Deps {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Stdin == nil {
		d.Stdin = os.Stdin
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	return d
}

// Decode copies module parameters into out, a pointer to a struct with
// mapstructure tags. Numbers may be given as strings. With strict set, keys
// that out does not declare are an error.
func Decode(in map[string]interface{}, out interface{}, strict bool) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(in)
}

func invalidConfig(moduleType string, index int, err error) error {
	return errhandling.NewConfigurationError(fmt.Sprintf("invalid %s config at index %d", moduleType, index), err)
}

// registerBuiltinInputModules registers all built-in input module types.
func registerBuiltinInputModules() {
	// file - delimited text from a file, a compressed file or stdin.
	// Field extraction keys (separator, xIndex, ...) live in the same
	// section and are read by the factory, so decoding is not strict.
	RegisterInput(input.TypeFile, func(cfg *connector.ModuleConfig, deps Deps) (input.Module, error) {
		if cfg == nil {
			return nil, errhandling.NewConfigurationError("missing input config", nil)
		}
		var fileCfg input.FileConfig
		if err := Decode(cfg.Config, &fileCfg, false); err != nil {
			return nil, errhandling.NewConfigurationError("invalid file input config", err)
		}
		deps = deps.WithDefaults()
		return input.NewFile(fileCfg, input.WithFs(deps.Fs), input.WithStdin(deps.Stdin))
	})
}

type scaleParams struct {
	Factor *float64 `mapstructure:"factor"`
}

type shiftParams struct {
	Delta *float64 `mapstructure:"delta"`
}

type boundParams struct {
	Bound *float64 `mapstructure:"bound"`
}

type everyNthParams struct {
	N *int `mapstructure:"n"`
}

type digitalParams struct {
	Threshold float64 `mapstructure:"threshold"`
}

type noParams struct{}

// floatFilter registers a filter taking one required float parameter.
func floatFilter[P any](moduleType, key string, get func(*P) *float64, build func(float64) filter.Module) {
	RegisterFilter(moduleType, func(cfg connector.ModuleConfig, index int) (filter.Module, error) {
		var params P
		if err := Decode(cfg.Config, &params, true); err != nil {
			return nil, invalidConfig(moduleType, index, err)
		}
		v := get(&params)
		if v == nil {
			return nil, invalidConfig(moduleType, index, fmt.Errorf("required field '%s' is missing", key))
		}
		return build(*v), nil
	})
}

// plainFilter registers a filter without parameters.
func plainFilter(moduleType string, build func() filter.Module) {
	RegisterFilter(moduleType, func(cfg connector.ModuleConfig, index int) (filter.Module, error) {
		if err := Decode(cfg.Config, &noParams{}, true); err != nil {
			return nil, invalidConfig(moduleType, index, err)
		}
		return build(), nil
	})
}

// registerBuiltinFilterModules registers all built-in row filter types.
func registerBuiltinFilterModules() {
	floatFilter(filter.TypeScaleX, "factor", func(p *scaleParams) *float64 { return p.Factor }, filter.ScaleX)
	floatFilter(filter.TypeScaleY, "factor", func(p *scaleParams) *float64 { return p.Factor }, filter.ScaleY)
	floatFilter(filter.TypeShiftX, "delta", func(p *shiftParams) *float64 { return p.Delta }, filter.ShiftX)
	floatFilter(filter.TypeShiftY, "delta", func(p *shiftParams) *float64 { return p.Delta }, filter.ShiftY)
	floatFilter(filter.TypeXMin, "bound", func(p *boundParams) *float64 { return p.Bound }, filter.XMin)
	floatFilter(filter.TypeXMax, "bound", func(p *boundParams) *float64 { return p.Bound }, filter.XMax)

	plainFilter(filter.TypeYIsInteger, filter.YIsInteger)
	plainFilter(filter.TypeYMultibit, filter.YMultibit)

	// everyNth - n of 0 keeps every row
	RegisterFilter(filter.TypeEveryNth, func(cfg connector.ModuleConfig, index int) (filter.Module, error) {
		var params everyNthParams
		if err := Decode(cfg.Config, &params, true); err != nil {
			return nil, invalidConfig(filter.TypeEveryNth, index, err)
		}
		if params.N == nil {
			return nil, invalidConfig(filter.TypeEveryNth, index, fmt.Errorf("required field 'n' is missing"))
		}
		if *params.N < 0 {
			return nil, invalidConfig(filter.TypeEveryNth, index, fmt.Errorf("n must not be negative, got %d", *params.N))
		}
		return filter.EveryNth(uint(*params.N)), nil
	})

	// digital - threshold defaults to 0
	RegisterFilter(filter.TypeDigital, func(cfg connector.ModuleConfig, index int) (filter.Module, error) {
		var params digitalParams
		if err := Decode(cfg.Config, &params, true); err != nil {
			return nil, invalidConfig(filter.TypeDigital, index, err)
		}
		return filter.Digital(params.Threshold), nil
	})
}

type removeRedundantParams struct {
	XDecimals *int `mapstructure:"xDecimals"`
	YDecimals *int `mapstructure:"yDecimals"`
}

type sampleParams struct {
	Start    float64  `mapstructure:"start"`
	Interval *float64 `mapstructure:"interval"`
}

// registerBuiltinPostFilterModules registers all built-in post-pass filter types.
func registerBuiltinPostFilterModules() {
	RegisterPostFilter(filter.TypeRemoveRedundant, func(cfg connector.ModuleConfig, index int) (filter.PostModule, error) {
		var params removeRedundantParams
		if err := Decode(cfg.Config, &params, true); err != nil {
			return nil, invalidConfig(filter.TypeRemoveRedundant, index, err)
		}
		x, y := filter.DefaultDecimals, filter.DefaultDecimals
		if params.XDecimals != nil {
			x = *params.XDecimals
		}
		if params.YDecimals != nil {
			y = *params.YDecimals
		}
		if x < 0 || y < 0 {
			return nil, invalidConfig(filter.TypeRemoveRedundant, index, fmt.Errorf("precision must not be negative (x %d, y %d)", x, y))
		}
		return filter.NewRemoveRedundant(x, y), nil
	})

	RegisterPostFilter(filter.TypeSample, func(cfg connector.ModuleConfig, index int) (filter.PostModule, error) {
		var params sampleParams
		if err := Decode(cfg.Config, &params, true); err != nil {
			return nil, invalidConfig(filter.TypeSample, index, err)
		}
		if params.Interval == nil {
			return nil, invalidConfig(filter.TypeSample, index, fmt.Errorf("required field 'interval' is missing"))
		}
		module, err := filter.NewSample(params.Start, *params.Interval)
		if err != nil {
			return nil, invalidConfig(filter.TypeSample, index, err)
		}
		return module, nil
	})

	RegisterPostFilter(filter.TypeXRelative, func(cfg connector.ModuleConfig, index int) (filter.PostModule, error) {
		if err := Decode(cfg.Config, &noParams{}, true); err != nil {
			return nil, invalidConfig(filter.TypeXRelative, index, err)
		}
		return filter.NewXRelative(), nil
	})
}

// registerBuiltinOutputModules registers all built-in output module types.
func registerBuiltinOutputModules() {
	RegisterOutput(output.TypeText, func(cfg *connector.ModuleConfig, deps Deps) (output.Module, error) {
		outCfg, opts, err := outputConfig(cfg, deps)
		if err != nil {
			return nil, err
		}
		return output.NewText(outCfg, opts...)
	})

	RegisterOutput(output.TypeJSONL, func(cfg *connector.ModuleConfig, deps Deps) (output.Module, error) {
		outCfg, opts, err := outputConfig(cfg, deps)
		if err != nil {
			return nil, err
		}
		return output.NewJSONL(outCfg, opts...)
	})
}

func outputConfig(cfg *connector.ModuleConfig, deps Deps) (output.Config, []output.Option, error) {
	var outCfg output.Config
	if cfg != nil {
		if err := Decode(cfg.Config, &outCfg, true); err != nil {
			return outCfg, nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s output config", cfg.Type), err)
		}
	}
	deps = deps.WithDefaults()
	return outCfg, []output.Option{output.WithWriter(deps.Stdout), output.WithFs(deps.Fs)}, nil
}
