package config

import (
	"fmt"
	"sort"
	"strings"
)

// settableKeys maps the dotted names accepted by `usercard config set` to the field they change
var settableKeys = map[string]func(*Config, string){
	"storage.backend":   func(c *Config, s string) { c.Storage.Backend = s },
	"storage.file_path": func(c *Config, s string) { c.Storage.FilePath = s },
	"storage.dsn":       func(c *Config, s string) { c.Storage.DSN = s },
	"logging.level":     func(c *Config, s string) { c.Logging.Level = s },
	"logging.file_path": func(c *Config, s string) { c.Logging.FilePath = s },
}

// SettableKeys returns the dotted config keys SetValue accepts, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for key := range settableKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetValue saves a single config value to the config file.  key uses the YAML names joined by dots, e.g.
// storage.backend.  Values are not validated.
func SetValue(key, value string) error {
	apply, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q, expected one of: %s", key, strings.Join(SettableKeys(), ", "))
	}
	return UpdateConfig(func(c *Config) { apply(c, value) })
}
