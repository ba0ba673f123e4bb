package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, key := range []string{"FILTERDATA_LOG_LEVEL", "FILTERDATA_LOG_FORMAT", "FILTERDATA_LOG_FILE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", env.LogLevel)
	assert.Equal(t, "human", env.LogFormat)
	assert.Empty(t, env.LogFile)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("FILTERDATA_LOG_LEVEL", "debug")
	t.Setenv("FILTERDATA_LOG_FORMAT", "json")
	t.Setenv("FILTERDATA_LOG_FILE", "/tmp/filterdata.log")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, Env{LogLevel: "debug", LogFormat: "json", LogFile: "/tmp/filterdata.log"}, env)
}
