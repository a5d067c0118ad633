package config

import (
	"dario.cat/mergo"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "usercard"

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `yaml:"storage,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// StorageConfig selects and configures the key-value store the profile is persisted in
type StorageConfig struct {
	Backend  string `yaml:"backend,omitempty"` // "file", "memory", "sqlite", "postgres"
	FilePath string `yaml:"file_path,omitempty"`
	DSN      string `yaml:"dsn,omitempty"` // sqlite file or postgres connection string
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties.  These depend on the machine, e.g. the storage file and log file locations.
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	// 1. Start with base defaults
	cfg := createBaseDefaultConfig()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	// 2. If no config file exists on disk, then write a default one
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Failing to save the defaults should not stop the application from running with them.
		_ = saveDefault(cfg, configPath)
	}

	// 3. Apply dynamic defaults
	applyDynamicDefaults(cfg)

	// 4. Load the config from disk and merge it over the defaults
	fileConfig, err := loadFromDisk(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Saving the default config failed in step 2, so there is nothing to merge
	case err != nil:
		return nil, err
	default:
		if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
		}
	}

	// 5. Environment variables take precedence over everything else
	applyEnvVarOverrides(cfg)

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined defaults.  They are never written to the config file since they can
// differ between machines and runs.
func applyDynamicDefaults(cfg *Config) {
	cfg.Storage.FilePath = defaultStorageFilePath()
	cfg.Logging.FilePath = defaultLogFilePath()
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

// saveDefault writes the default config in Load.  Replaced in tests to simulate an unwritable config dir.
var saveDefault = save

func save(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk.  When there is no
// config file yet the update is applied to the static defaults.
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = createBaseDefaultConfig()
	} else if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// Path returns the config file location, as used by Load
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file.  Uses the environment variable override if present, else the OS
// config location.
func getConfigPath() (string, error) {
	configPath := os.Getenv(envConfigPath)
	if configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, appDirName, "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all static default values
func createBaseDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			DSN:     "usercard.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultStorageFilePath returns where the file backend keeps its data.  Falls back to the working directory when the
// home directory is unknown.
func defaultStorageFilePath() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "usercard.json")
	}

	var basePath string
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, appDirName)
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", appDirName)
		}
	case "darwin":
		basePath = filepath.Join(homedir, "Library", "Application Support", appDirName)
	default:
		// Linux/BSD:  XDG_DATA_HOME
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			basePath = filepath.Join(xdgData, appDirName)
		} else {
			basePath = filepath.Join(homedir, ".local", "share", appDirName)
		}
	}
	return filepath.Join(basePath, "storage.json")
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	var basePath string
	homedir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to logging in the current directory if home directory cannot be determined
		return filepath.Join(".", "usercard.log")
	}

	switch runtime.GOOS {
	case "windows":
		// Windows:  %LOCALAPPDATA%\usercard\logs
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, appDirName, "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", appDirName, "logs")
		}
	case "darwin":
		// macOS:  ~/Library/Logs/usercard
		basePath = filepath.Join(homedir, "Library", "Logs", appDirName)
	default:
		// Linux/BSD:  XDG_STATE_HOME
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, appDirName, "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", appDirName, "logs")
		}
	}

	return filepath.Join(basePath, "usercard.log")
}
