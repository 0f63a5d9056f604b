package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// ProjectConfigFile is the name of the project-level config file.
	ProjectConfigFile = "decmart.yaml"
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/decmart"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
	// StateDirName is the default state directory under the user state root.
	StateDirName = "decmart"

	// EnvAPIBaseURL overrides api.base_url.
	EnvAPIBaseURL = "DECMART_API_URL"
	// EnvPaymentKeyID overrides payment.key_id.
	EnvPaymentKeyID = "DECMART_RAZORPAY_KEY"
	// EnvStateDir overrides state.dir.
	EnvStateDir = "DECMART_STATE_DIR"
	// EnvAPITimeout overrides api.timeout (Go duration string).
	EnvAPITimeout = "DECMART_API_TIMEOUT"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/decmart/config.yaml)
// 3. Project config (decmart.yaml in current or parent directories)
// 4. Environment variables
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	l.applyEnv(config)

	if config.State.Dir == "" {
		config.State.Dir = l.defaultStateDir()
		l.logger.Debug("Using default state directory", slog.String("dir", config.State.Dir))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it
// doesn't exist.
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// applyEnv overlays environment variables onto the config.
func (l *Loader) applyEnv(config *Config) {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvPaymentKeyID); v != "" {
		config.Payment.KeyID = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		config.State.Dir = v
	}
	if v := os.Getenv(EnvAPITimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.API.Timeout = d
		} else {
			l.logger.Warn("Ignoring invalid timeout", slog.String("value", v), slog.String("error", err.Error()))
		}
	}
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for decmart.yaml in current and parent directories.
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// defaultStateDir returns the per-user state directory
// (~/.local/state/decmart, honoring XDG_STATE_HOME).
func (l *Loader) defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, StateDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return StateDirName
	}
	return filepath.Join(home, ".local", "state", StateDirName)
}
