package registry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickschulz/filter-data/internal/dataset"
	"github.com/patrickschulz/filter-data/internal/errhandling"
	"github.com/patrickschulz/filter-data/internal/modules/filter"
	"github.com/patrickschulz/filter-data/pkg/connector"
)

func moduleConfig(moduleType string, kv ...interface{}) connector.ModuleConfig {
	cfg := connector.ModuleConfig{Type: moduleType, Config: map[string]interface{}{}}
	for i := 0; i+1 < len(kv); i += 2 {
		cfg.Config[kv[i].(string)] = kv[i+1]
	}
	return cfg
}

func buildFilter(t *testing.T, cfg connector.ModuleConfig) (filter.Module, error) {
	t.Helper()
	constructor := GetFilterConstructor(cfg.Type)
	require.NotNil(t, constructor, "no constructor for %s", cfg.Type)
	return constructor(cfg, 0)
}

func TestBuiltinFilters_Construct(t *testing.T) {
	tests := []struct {
		name  string
		cfg   connector.ModuleConfig
		row   dataset.Row
		keep  bool
		wantX float64
		wantY dataset.Value
	}{
		{"scaleX", moduleConfig("scaleX", "factor", 2.5), dataset.Row{X: 2, Y: dataset.Real(1)}, true, 5, dataset.Real(1)},
		{"scaleX yaml int", moduleConfig("scaleX", "factor", 3), dataset.Row{X: 2, Y: dataset.Real(1)}, true, 6, dataset.Real(1)},
		{"scaleY string number", moduleConfig("scaleY", "factor", "2"), dataset.Row{X: 1, Y: dataset.Real(1.5)}, true, 1, dataset.Real(3)},
		{"shiftX", moduleConfig("shiftX", "delta", -1.0), dataset.Row{X: 1, Y: dataset.Real(0)}, true, 0, dataset.Real(0)},
		{"shiftY", moduleConfig("shiftY", "delta", 0.5), dataset.Row{X: 1, Y: dataset.Real(1)}, true, 1, dataset.Real(1.5)},
		{"xMin rejects", moduleConfig("xMin", "bound", 10), dataset.Row{X: 9}, false, 9, dataset.Real(0)},
		{"xMax accepts bound", moduleConfig("xMax", "bound", 10), dataset.Row{X: 10}, true, 10, dataset.Real(0)},
		{"yIsInteger", moduleConfig("yIsInteger"), dataset.Row{X: 1, Y: dataset.Real(-2.7)}, true, 1, dataset.Integer(-2)},
		{"digital default threshold", moduleConfig("digital"), dataset.Row{X: 1, Y: dataset.Real(0.1)}, true, 1, dataset.Integer(1)},
		{"digital threshold", moduleConfig("digital", "threshold", 2.5), dataset.Row{X: 1, Y: dataset.Real(2)}, true, 1, dataset.Integer(0)},
		{"yMultibit", moduleConfig("yMultibit"), dataset.Row{X: 1, Y: dataset.Text("101")}, true, 1, dataset.Integer(5)},
		{"everyNth zero", moduleConfig("everyNth", "n", 0), dataset.Row{X: 1}, true, 1, dataset.Real(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := buildFilter(t, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Type, m.Name())

			row := tt.row
			assert.Equal(t, tt.keep, m.Apply(&row))
			assert.Equal(t, tt.wantX, row.X)
			assert.Equal(t, tt.wantY, row.Y)
		})
	}
}

func TestBuiltinFilters_EveryNthCounts(t *testing.T) {
	m, err := buildFilter(t, moduleConfig("everyNth", "n", 3))
	require.NoError(t, err)

	var got []bool
	for i := 0; i < 6; i++ {
		got = append(got, m.Apply(&dataset.Row{X: float64(i)}))
	}
	assert.Equal(t, []bool{false, false, true, false, false, true}, got)
}

func TestBuiltinFilters_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  connector.ModuleConfig
		msg  string
	}{
		{"missing factor", moduleConfig("scaleX"), "factor"},
		{"missing delta", moduleConfig("shiftY"), "delta"},
		{"missing bound", moduleConfig("xMin"), "bound"},
		{"bad number", moduleConfig("xMax", "bound", "ten"), "invalid xMax config"},
		{"unknown key", moduleConfig("scaleX", "factor", 1, "offset", 2), "offset"},
		{"args on plain filter", moduleConfig("yIsInteger", "n", 1), "invalid yIsInteger config"},
		{"missing n", moduleConfig("everyNth"), "'n'"},
		{"negative n", moduleConfig("everyNth", "n", -2), "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildFilter(t, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, errhandling.ExitConfiguration, errhandling.ExitCode(err))
		})
	}
}

func TestBuiltinFilters_IndexInError(t *testing.T) {
	_, err := GetFilterConstructor("scaleX")(moduleConfig("scaleX"), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scaleX config at index 4")
}

func TestBuiltinPostFilters(t *testing.T) {
	ds := dataset.FromRows(
		dataset.Row{X: 1, Y: dataset.Real(1)},
		dataset.Row{X: 1, Y: dataset.Real(2)},
		dataset.Row{X: 2, Y: dataset.Real(3)},
	)

	m, err := GetPostFilterConstructor("removeRedundant")(moduleConfig("removeRedundant", "xDecimals", 0), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Process(ds))

	m, err = GetPostFilterConstructor("xRelative")(moduleConfig("xRelative"), 1)
	require.NoError(t, err)
	m.Process(ds)
	assert.Equal(t, 0.0, ds.At(0).X)
	assert.Equal(t, 1.0, ds.At(2).X)

	m, err = GetPostFilterConstructor("sample")(moduleConfig("sample", "start", 0, "interval", 10), 2)
	require.NoError(t, err)
	assert.Equal(t, filter.TypeSample, m.Name())
}

func TestBuiltinPostFilters_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  connector.ModuleConfig
		msg  string
	}{
		{"sample without interval", moduleConfig("sample", "start", 1), "interval"},
		{"sample zero interval", moduleConfig("sample", "interval", 0), "greater than zero"},
		{"negative precision", moduleConfig("removeRedundant", "yDecimals", -1), "negative"},
		{"xRelative args", moduleConfig("xRelative", "origin", 3), "origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetPostFilterConstructor(tt.cfg.Type)(tt.cfg, 0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, errhandling.CategoryConfiguration, errhandling.GetErrorCategory(err))
		})
	}
}

func TestBuiltinInput_File(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data.csv", []byte("h\n1,2\n3,4\n"), 0o644))

	cfg := moduleConfig("file", "path", "data.csv", "skip", 1, "xIndex", 0, "yIndex", 1, "separator", ",")
	m, err := GetInputConstructor("file")(&cfg, Deps{Fs: fs})
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	var lines []string
	n, err := m.ReadLines(context.Background(), func(_ int, line string) error {
		lines = append(lines, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1,2", "3,4"}, lines)
}

func TestBuiltinInput_Stdin(t *testing.T) {
	cfg := moduleConfig("file", "path", "-")
	m, err := GetInputConstructor("file")(&cfg, Deps{Stdin: strings.NewReader("a\nb\n")})
	require.NoError(t, err)

	n, err := m.ReadLines(context.Background(), func(int, string) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestBuiltinInput_Errors(t *testing.T) {
	_, err := GetInputConstructor("file")(nil, Deps{})
	assert.Equal(t, errhandling.CategoryConfiguration, errhandling.GetErrorCategory(err))

	cfg := moduleConfig("file")
	_, err = GetInputConstructor("file")(&cfg, Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no filename given")
}

func TestBuiltinOutputs(t *testing.T) {
	ds := dataset.FromRows(dataset.Row{X: 1, Y: dataset.Integer(2)})

	var text bytes.Buffer
	cfg := moduleConfig("text", "separator", ";", "xDecimals", 1)
	m, err := GetOutputConstructor("text")(&cfg, Deps{Stdout: &text})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), ds)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.Equal(t, "1.0;2\n", text.String())

	var jsonl bytes.Buffer
	cfg = moduleConfig("jsonl", "xDecimals", 0)
	m, err = GetOutputConstructor("jsonl")(&cfg, Deps{Stdout: &jsonl})
	require.NoError(t, err)
	_, err = m.Send(context.Background(), ds)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.Equal(t, `{"x":1,"y":2}`+"\n", jsonl.String())
}

func TestBuiltinOutputs_InvalidConfig(t *testing.T) {
	cfg := moduleConfig("text", "colour", "red")
	_, err := GetOutputConstructor("text")(&cfg, Deps{})
	require.Error(t, err)
	assert.Equal(t, errhandling.ExitConfiguration, errhandling.ExitCode(err))
}
