package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrorCategory tests error category constants and their string values.
func TestErrorCategory(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{CategoryConfiguration, "configuration"},
		{CategoryParse, "parse"},
		{CategoryIO, "io"},
		{CategoryUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.category))
		})
	}
}

// TestClassifiedError tests the ClassifiedError type.
func TestClassifiedError(t *testing.T) {
	t.Run("Error message formatting", func(t *testing.T) {
		err := NewIOError("cannot open data.csv", errors.New("no such file or directory"))
		got := err.Error()
		assert.Contains(t, got, "io")
		assert.Contains(t, got, "cannot open data.csv")
		assert.Contains(t, got, "no such file")
	})

	t.Run("Message only", func(t *testing.T) {
		err := NewConfigurationError("no filename given", nil)
		assert.Equal(t, "configuration error: no filename given", err.Error())
	})

	t.Run("Unwrap returns original error", func(t *testing.T) {
		original := errors.New("original error")
		err := NewParseError("bad yaml", original)
		assert.Equal(t, original, err.Unwrap())
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), original)
	})
}

func TestClassifyError(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "missing.csv", Err: fs.ErrNotExist}
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"nil", nil, CategoryUnknown},
		{"already classified", NewConfigurationError("x", nil), CategoryConfiguration},
		{"wrapped classified", fmt.Errorf("ctx: %w", NewParseError("x", nil)), CategoryParse},
		{"path error", pathErr, CategoryIO},
		{"not exist", fmt.Errorf("lookup: %w", os.ErrNotExist), CategoryIO},
		{"permission", os.ErrPermission, CategoryIO},
		{"canceled", context.Canceled, CategoryIO},
		{"deadline", context.DeadlineExceeded, CategoryIO},
		{"plain", errors.New("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, ClassifyError(tt.err).Category)
		})
	}
}

func TestClassifyError_PathMessage(t *testing.T) {
	err := ClassifyError(&fs.PathError{Op: "open", Path: "data.csv", Err: fs.ErrNotExist})
	assert.Equal(t, "open data.csv", err.Message)
	assert.ErrorIs(t, err, fs.ErrNotExist, "classified path error should still match fs.ErrNotExist")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, CategoryUnknown, GetErrorCategory(nil))
	assert.Equal(t, CategoryUnknown, GetErrorCategory(errors.New("x")))
	assert.Equal(t, CategoryIO, GetErrorCategory(NewIOError("x", nil)))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"configuration", NewConfigurationError("no xindex given", nil), ExitConfiguration},
		{"parse", NewParseError("invalid yaml", nil), ExitParse},
		{"io", NewIOError("write failed", nil), ExitRuntime},
		{"path", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ExitRuntime},
		{"unknown", errors.New("boom"), ExitRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
