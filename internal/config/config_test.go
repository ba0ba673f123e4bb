package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickschulz/filter-data/internal/errhandling"
)

func TestLoader_Load(t *testing.T) {
	pipeline, err := NewLoader(nil).Load("testdata/valid-pipeline.json")
	require.NoError(t, err)

	assert.Equal(t, "-", pipeline.Input.Config["path"])
	assert.Equal(t, true, pipeline.Input.Config["yAsText"])
	require.Len(t, pipeline.Filters, 2)
	assert.Equal(t, "jsonl", pipeline.Output.Type)
}

func TestLoader_ErrorCategories(t *testing.T) {
	loader := NewLoader(afero.NewOsFs())

	tests := []struct {
		file     string
		category errhandling.ErrorCategory
		exit     int
	}{
		{"testdata/missing.yaml", errhandling.CategoryIO, errhandling.ExitRuntime},
		{"testdata/invalid-syntax.json", errhandling.CategoryParse, errhandling.ExitParse},
		{"testdata/invalid-missing-input.yaml", errhandling.CategoryConfiguration, errhandling.ExitConfiguration},
		{"testdata/invalid-filter-args.yaml", errhandling.CategoryConfiguration, errhandling.ExitConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := loader.Load(tt.file)
			require.Error(t, err)
			assert.Equal(t, tt.category, errhandling.GetErrorCategory(err))
			assert.Equal(t, tt.exit, errhandling.ExitCode(err))
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "p.yml", []byte("schemaVersion: \"2.0\"\npipeline: {}\n"), 0o644))

	result, err := NewLoader(fs).Validate("p.yml")
	require.Error(t, err)
	assert.GreaterOrEqual(t, len(result.ValidationErrors), 2, "bad version and missing input")
	assert.Empty(t, result.ParseErrors)
}

func TestResult_Err(t *testing.T) {
	assert.NoError(t, (&Result{}).Err())

	err := (&Result{ValidationErrors: []ValidationError{{Path: "/pipeline", Message: "missing input"}}}).Err()
	assert.Equal(t, errhandling.CategoryConfiguration, errhandling.GetErrorCategory(err))
	assert.Contains(t, err.Error(), "/pipeline: missing input")
}
