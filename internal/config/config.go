// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnvOverrides.
const (
	// EnvAPIKey is the credential variable of the deploy environment.
	EnvAPIKey = "API_GENERATIVE_LANGUAGE_CLIENT"

	// EnvChatAIKey takes precedence over EnvAPIKey when both are set.
	EnvChatAIKey  = "CHATAI_API_KEY"
	EnvBaseURL    = "CHATAI_BASE_URL"
	EnvModel      = "CHATAI_MODEL"
	EnvLogFile    = "CHATAI_LOG_FILE"
	EnvConfigHome = "CHATAI_HOME" // overrides ~/.chatai
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete chatai configuration.
type Config struct {
	API APIConfig `toml:"api"`
	UI  UIConfig  `toml:"ui"`
	Log LogConfig `toml:"log"`
}

// APIConfig describes the remote completion endpoint.
type APIConfig struct {
	// Key is the API credential, sent as the "key" query parameter
	Key string `toml:"key"`
	// BaseURL is the API root, e.g. https://generativelanguage.googleapis.com/v1beta
	BaseURL string `toml:"base_url"`
	// Model is the model name used in the generateContent path
	Model string `toml:"model"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Title is shown in the header bar
	Title string `toml:"title"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// File receives log output (the terminal is owned by the UI)
	File string `toml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	logFile := "chatai.log"
	if dir, err := ConfigDir(); err == nil {
		logFile = filepath.Join(dir, "chatai.log")
	}

	return &Config{
		API: APIConfig{
			Key:     "",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-pro",
		},
		UI: UIConfig{
			Title: "Chat AI",
		},
		Log: LogConfig{
			File: logFile,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the chatai configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".chatai"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load resolves the configuration from defaults, the config file, .env and
// the environment, then validates it.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		path = ""
	}
	return LoadFromPath(path)
}

// LoadFromPath is Load with an explicit config file path. A missing file is
// not an error; an empty path skips the file entirely.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadTOML(cfg, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Variables that are already set win, and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - API_GENERATIVE_LANGUAGE_CLIENT: api.key
//   - CHATAI_API_KEY: api.key (wins over the above)
//   - CHATAI_BASE_URL: api.base_url
//   - CHATAI_MODEL: api.model
//   - CHATAI_LOG_FILE: log.file
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.API.Key = key
	}
	if key := os.Getenv(EnvChatAIKey); key != "" {
		c.API.Key = key
	}
	if u := os.Getenv(EnvBaseURL); u != "" {
		c.API.BaseURL = u
	}
	if m := os.Getenv(EnvModel); m != "" {
		c.API.Model = m
	}
	if f := os.Getenv(EnvLogFile); f != "" {
		c.Log.File = f
	}
}

// SetDefaults fills empty fields with defaults and normalizes values.
func (c *Config) SetDefaults() {
	defaults := Default()

	c.API.Key = strings.TrimSpace(c.API.Key)
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	c.API.Model = strings.TrimSpace(c.API.Model)
	if c.API.Model == "" {
		c.API.Model = defaults.API.Model
	}
	if strings.TrimSpace(c.UI.Title) == "" {
		c.UI.Title = defaults.UI.Title
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}
}

// HasAPIKey reports whether a credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.API.Key != ""
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
// A missing API key is deliberately accepted.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "api.base_url", Message: err.Error()})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "missing host"})
	}

	if c.API.Model == "" {
		errs = append(errs, ValidationError{Field: "api.model", Message: "must not be empty"})
	} else if strings.ContainsAny(c.API.Model, " /?#") && !strings.HasPrefix(c.API.Model, "models/") {
		errs = append(errs, ValidationError{
			Field:   "api.model",
			Message: fmt.Sprintf("invalid model name %q", c.API.Model),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigErr  error
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// If loading fails the defaults are returned and the error is kept for
// GlobalErr.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigErr = err
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// GlobalErr returns the error from the first Global load, if any.
func GlobalErr() error {
	Global()
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfigErr
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	globalConfigErr = nil
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigErr = nil
	globalConfigOnce = sync.Once{}
}
