package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalConfig() map[string]interface{} {
	return map[string]interface{}{
		"schemaVersion": "1.0",
		"pipeline": map[string]interface{}{
			"input": map[string]interface{}{
				"type":   "file",
				"path":   "data.csv",
				"xIndex": 0,
				"yIndex": 1,
			},
		},
	}
}

func withPipeline(key string, value interface{}) map[string]interface{} {
	data := minimalConfig()
	data["pipeline"].(map[string]interface{})[key] = value
	return data
}

func TestGetEmbeddedSchema(t *testing.T) {
	assert.Contains(t, string(GetEmbeddedSchema()), `"schemaVersion"`)
}

func TestValidateConfig_Minimal(t *testing.T) {
	result := ValidateConfig(minimalConfig())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestValidateConfig_NilAndEmpty(t *testing.T) {
	result := ValidateConfig(nil)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "required", result.Errors[0].Type)

	result = ValidateConfig(map[string]interface{}{})
	assert.False(t, result.Valid)
}

func TestValidateConfig_Filters(t *testing.T) {
	tests := []struct {
		name   string
		filter map[string]interface{}
		valid  bool
	}{
		{"scale", map[string]interface{}{"type": "scaleY", "factor": -2.5}, true},
		{"shift", map[string]interface{}{"type": "shiftX", "delta": 1}, true},
		{"bound", map[string]interface{}{"type": "xMax", "bound": 10}, true},
		{"every nth", map[string]interface{}{"type": "everyNth", "n": 3}, true},
		{"digital default threshold", map[string]interface{}{"type": "digital"}, true},
		{"no args", map[string]interface{}{"type": "yIsInteger"}, true},
		{"missing factor", map[string]interface{}{"type": "scaleX"}, false},
		{"wrong argument", map[string]interface{}{"type": "xMin", "factor": 1}, false},
		{"negative n", map[string]interface{}{"type": "everyNth", "n": -1}, false},
		{"fractional n", map[string]interface{}{"type": "everyNth", "n": 1.5}, false},
		{"unknown type", map[string]interface{}{"type": "script", "code": "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateConfig(withPipeline("filters", []interface{}{tt.filter}))
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
		})
	}
}

func TestValidateConfig_PostFilters(t *testing.T) {
	tests := []struct {
		name  string
		post  map[string]interface{}
		valid bool
	}{
		{"sample", map[string]interface{}{"type": "sample", "interval": 0.1}, true},
		{"sample zero interval", map[string]interface{}{"type": "sample", "interval": 0}, false},
		{"sample missing interval", map[string]interface{}{"type": "sample", "start": 1}, false},
		{"dedup", map[string]interface{}{"type": "removeRedundant", "xDecimals": 2}, true},
		{"dedup negative decimals", map[string]interface{}{"type": "removeRedundant", "yDecimals": -1}, false},
		{"relative", map[string]interface{}{"type": "xRelative"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateConfig(withPipeline("postFilters", []interface{}{tt.post}))
			assert.Equal(t, tt.valid, result.Valid, "errors: %v", result.Errors)
		})
	}
}

func TestValidateConfig_ErrorPaths(t *testing.T) {
	data := minimalConfig()
	data["pipeline"].(map[string]interface{})["input"].(map[string]interface{})["xIndex"] = -1

	result := ValidateConfig(data)
	require.False(t, result.Valid)

	var found *ValidationError
	for i, e := range result.Errors {
		if e.Path == "/pipeline/input/xIndex" {
			found = &result.Errors[i]
		}
	}
	require.NotNil(t, found, "errors: %v", result.Errors)
	assert.Equal(t, "minimum", found.Type)
}

func TestValidateConfig_UnknownKey(t *testing.T) {
	result := ValidateConfig(withPipeline("retries", 3))
	require.False(t, result.Valid)
	var types []string
	for _, e := range result.Errors {
		if e.Path == "/pipeline" {
			types = append(types, e.Type)
		}
	}
	assert.Contains(t, types, "additionalProperties", "errors: %v", result.Errors)
}

func TestValidateConfig_Output(t *testing.T) {
	result := ValidateConfig(withPipeline("output", map[string]interface{}{"type": "csv"}))
	assert.False(t, result.Valid)

	result = ValidateConfig(withPipeline("output", map[string]interface{}{
		"type": "jsonl", "path": "out.jsonl", "xDecimals": 3,
	}))
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}
