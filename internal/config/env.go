package config

import (
	"os"
)

const envConfigPath = "USERCARD_CONFIG_PATH"

// EnvVar documents an environment variable that overrides part of the config
type EnvVar struct {
	Name  string
	Desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []EnvVar{
	{
		// Listed for documentation only.  It decides where the config is loaded from, so it is read before loading.
		Name:  envConfigPath,
		Desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {},
	},
	{
		Name:  "USERCARD_CONFIG_STORAGE_BACKEND",
		Desc:  "Sets the storage backend.  One of: file, memory, sqlite, postgres.  Default: file",
		apply: func(c *Config, s string) { c.Storage.Backend = s },
	},
	{
		Name:  "USERCARD_CONFIG_STORAGE_FILE_PATH",
		Desc:  "Sets the file used by the file storage backend.  Default: OS-specific data directory",
		apply: func(c *Config, s string) { c.Storage.FilePath = s },
	},
	{
		Name:  "USERCARD_CONFIG_STORAGE_DSN",
		Desc:  "Sets the database DSN used by the sqlite and postgres backends.  Default: usercard.db",
		apply: func(c *Config, s string) { c.Storage.DSN = s },
	},
	{
		Name:  "USERCARD_CONFIG_LOGGING_LEVEL",
		Desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		Name:  "USERCARD_CONFIG_LOGGING_FILE_PATH",
		Desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

// EnvVars returns the environment variables that are read when loading the config
func EnvVars() []EnvVar {
	out := make([]EnvVar, len(supportedEnvVars))
	copy(out, supportedEnvVars)
	return out
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.Name); value != "" {
			envVar.apply(c, value)
		}
	}
}
