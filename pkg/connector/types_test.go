package connector_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickschulz/filter-data/pkg/connector"
)

func TestPipelineJSONFieldNames(t *testing.T) {
	pipeline := connector.Pipeline{
		ID:   "scope",
		Name: "Scope trace",
		Input: &connector.ModuleConfig{
			Type:   "file",
			Config: map[string]interface{}{"path": "capture.csv", "xIndex": 0, "yIndex": 2},
		},
		PostFilters: []connector.ModuleConfig{
			{Type: "sample", Config: map[string]interface{}{"interval": 0.5}},
		},
		Output: &connector.ModuleConfig{Type: "text"},
	}

	data, err := json.Marshal(pipeline)
	require.NoError(t, err, "Failed to marshal pipeline to JSON")
	s := string(data)

	for _, want := range []string{`"id":"scope"`, `"postFilters":[{"type":"sample"`, `"input":{"type":"file"`} {
		assert.Contains(t, s, want)
	}
	assert.NotContains(t, s, `"filters"`, "empty filters should be omitted")
	assert.NotContains(t, s, `"description"`, "empty description should be omitted")
}

func TestExecutionResultJSON(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success carries the summary", func(t *testing.T) {
		result := connector.ExecutionResult{
			PipelineID:   "scope",
			Status:       "success",
			StartedAt:    started,
			CompletedAt:  started.Add(time.Second),
			LinesRead:    10,
			RowsAccepted: 8,
			RowsDropped:  2,
			RowsWritten:  6,
			Summary:      &connector.Summary{XMin: -1, XMax: 4.5, YMean: 2, NumericY: 6},
		}

		data, err := json.Marshal(result)
		require.NoError(t, err, "Failed to marshal result")
		s := string(data)
		for _, want := range []string{`"linesRead":10`, `"rowsWritten":6`, `"xMax":4.5`, `"numericY":6`} {
			assert.Contains(t, s, want)
		}
		assert.NotContains(t, s, `"error"`, "no error field on success")
	})

	t.Run("failure carries the error", func(t *testing.T) {
		result := connector.ExecutionResult{
			PipelineID: "scope",
			Status:     "error",
			StartedAt:  started,
			Error: &connector.ExecutionError{
				Code:          "INPUT_FAILED",
				Message:       "cannot open capture.csv",
				Module:        "file",
				ErrorCategory: "io",
			},
		}

		data, err := json.Marshal(result)
		require.NoError(t, err, "Failed to marshal result")

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.NotContains(t, decoded, "summary", "no summary on failure")

		errObj, ok := decoded["error"].(map[string]interface{})
		require.True(t, ok, "expected an error object, got %v", decoded["error"])
		assert.Equal(t, "io", errObj["errorCategory"])
		assert.Equal(t, "file", errObj["module"])
	})
}
