package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/patrickschulz/filter-data/internal/errhandling"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "FILTERDATA"

// Env holds settings taken from the environment. Command-line flags override
// them.
type Env struct {
	// LogLevel is one of debug, info, warn, error (FILTERDATA_LOG_LEVEL).
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	// LogFormat is human or json (FILTERDATA_LOG_FORMAT).
	LogFormat string `envconfig:"LOG_FORMAT" default:"human"`
	// LogFile receives a JSON copy of the logs when set (FILTERDATA_LOG_FILE).
	LogFile string `envconfig:"LOG_FILE"`
}

// LoadEnv reads Env from the environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, errhandling.NewConfigurationError("invalid environment", err)
	}
	return env, nil
}
