// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	API           APIConfig           `mapstructure:"api"`
	DatabasePath  string              `mapstructure:"database_path" validate:"required"`
	StationsPath  string              `mapstructure:"stations_path" validate:"required"`
	Export        ExportConfig        `mapstructure:"export"`
	PollInterval  time.Duration       `mapstructure:"poll_interval" validate:"min=1s"`
	RetentionDays int                 `mapstructure:"retention_days" validate:"gte=0"`
	AutoLoop      AutoLoopConfig      `mapstructure:"autoloop"`
	MetricsAddr   string              `mapstructure:"metrics_addr"`
	Log           LogConfig           `mapstructure:"log"`
	Notifications NotificationsConfig `mapstructure:"notifications"`

	// ConfigFile is the config file that was read, empty when none was found.
	ConfigFile string `mapstructure:"-"`
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"min=1s"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// ExportConfig configures where and how exports are produced.
type ExportConfig struct {
	Dir  string `mapstructure:"dir" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=remote local"`
}

// AutoLoopConfig configures unattended tab rotation.
type AutoLoopConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Inactivity time.Duration `mapstructure:"inactivity" validate:"min=1s"`
	Dwell      time.Duration `mapstructure:"dwell" validate:"min=1s"`
	// MinWidth is measured in terminal columns.
	MinWidth int `mapstructure:"min_width" validate:"gte=0"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// NotificationsConfig toggles desktop notifications.
type NotificationsConfig struct {
	Desktop bool `mapstructure:"desktop"`
}

// Export modes.
const (
	ExportModeRemote = "remote"
	ExportModeLocal  = "local"
)

// Default values
const (
	defaultAPITimeout   = 15 * time.Second
	defaultMaxRetries   = 2
	defaultPollInterval = 5 * time.Minute
	defaultRetention    = 30
	defaultInactivity   = 30 * time.Second
	defaultDwell        = 30 * time.Second
	defaultMinWidth     = 200
	envPrefix           = "HYDRO"
	configName          = "config"
)

// Load reads configuration from .env files, an optional YAML config file and
// HYDRO_* environment variables, in increasing order of precedence.
func Load(configPath string) (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{
		filepath.Dir(cfg.DatabasePath),
		filepath.Dir(cfg.StationsPath),
		cfg.Export.Dir,
	} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", defaultAPITimeout)
	v.SetDefault("api.max_retries", defaultMaxRetries)
	v.SetDefault("database_path", filepath.Join(getConfigDir(), "hydro.db"))
	v.SetDefault("stations_path", filepath.Join(getConfigDir(), "stations.json"))
	v.SetDefault("export.dir", getDefaultExportDir())
	v.SetDefault("export.mode", ExportModeRemote)
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("retention_days", defaultRetention)
	v.SetDefault("autoloop.enabled", true)
	v.SetDefault("autoloop.inactivity", defaultInactivity)
	v.SetDefault("autoloop.dwell", defaultDwell)
	v.SetDefault("autoloop.min_width", defaultMinWidth)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log.path", filepath.Join(getConfigDir(), "hydro.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("notifications.desktop", false)
}

// Validate checks struct constraints and returns a readable error.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "hydro-tui", ".env"),
			filepath.Join(home, ".hydro", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

// getConfigDir returns the directory holding config, database and logs.
func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "hydro-tui")
}

// getDefaultExportDir returns the default export directory.
func getDefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "exports"
	}
	return filepath.Join(home, "Downloads", "hydro-reports")
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
