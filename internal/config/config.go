// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	"github.com/spf13/afero"

	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

// Loader is responsible for loading pipeline configurations from files.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a new configuration loader reading from fs.
// A nil fs reads from the operating system.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{
		fs: fs,
	}
}

// Load reads, validates and converts a pipeline file.
// Supports both JSON and YAML formats.
func (l *Loader) Load(filepath string) (*connector.Pipeline, error) {
	result, err := l.Validate(filepath)
	if err != nil {
		return nil, err
	}
	pipeline, err := ConvertToPipeline(result.Data)
	if err != nil {
		return nil, errhandling.NewConfigurationError("invalid pipeline in "+filepath, err)
	}
	return pipeline, nil
}

// Validate parses a pipeline file and checks it against the JSON schema.
// The returned error is classified; see Result.Err.
func (l *Loader) Validate(filepath string) (*Result, error) {
	result := ParseConfig(l.fs, filepath)
	return result, result.Err()
}
