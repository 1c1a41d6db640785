/*
Package config handles loading, saving, and validating tts-survey-bot configuration.

Bot configuration is stored in ~/.tts-survey-bot.json. The survey definition
(categories, prompts, models, rating questions) lives in a separate YAML file
so researchers can edit it without touching bot settings.

Schema:

	{
	  "dataDir": "/home/user/.tts-survey-bot/data",
	  "audioDir": "./audio",
	  "databaseURL": "",
	  "surveyFile": "",
	  "adminIDs": [123456789],
	  "settings": {
	    "startupRetries": 5,
	    "startupRetryDelaySeconds": 3
	  }
	}
*/
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents the root bot configuration.
type Config struct {
	// DataDir is where CSV mirrors and the default SQLite database live.
	DataDir string `json:"dataDir"`

	// AudioDir is the root directory of the audio samples,
	// laid out as <AudioDir>/<category>/<model>/sample_<prompt>_female.wav.
	AudioDir string `json:"audioDir"`

	// DatabaseURL selects the relational backend. Empty means a SQLite
	// file under DataDir; a postgres:// DSN selects Postgres.
	DatabaseURL string `json:"databaseURL,omitempty"`

	// SurveyFile is an optional path to a YAML survey definition.
	// Empty means the built-in default survey.
	SurveyFile string `json:"surveyFile,omitempty"`

	// AdminIDs lists user IDs allowed to run admin commands in chat.
	AdminIDs []int64 `json:"adminIDs,omitempty"`

	// Settings contains tunable runtime options.
	Settings *Settings `json:"settings,omitempty"`
}

// Settings contains global configuration options.
type Settings struct {
	// StartupRetries is how many times to retry the database connection
	// at process start before giving up.
	StartupRetries int `json:"startupRetries,omitempty"`

	// StartupRetryDelaySeconds is the fixed delay between retries.
	StartupRetryDelaySeconds int `json:"startupRetryDelaySeconds,omitempty"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir:  filepath.Join(home, ".tts-survey-bot", "data"),
		AudioDir: "audio",
		Settings: &Settings{
			StartupRetries:           5,
			StartupRetryDelaySeconds: 3,
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.tts-survey-bot.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tts-survey-bot.json"), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'tts-survey-bot serve' once to create a default config file.",
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidConfigError{Path: path, Message: err.Error()}
	}

	// Fill gaps with defaults so older config files keep working.
	defaults := NewConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.AudioDir == "" {
		cfg.AudioDir = defaults.AudioDir
	}
	if cfg.Settings == nil {
		cfg.Settings = defaults.Settings
	}

	return &cfg, nil
}

// LoadOrCreate loads the default config file, creating it with defaults
// if it does not exist yet.
func LoadOrCreate() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		return cfg, nil
	}
	var notFound *ConfigNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	cfg = NewConfig()
	if err := Save(cfg, configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment variables onto the configuration.
// DATABASE_URL and ADMIN_IDS (comma-separated) take precedence over the
// config file, matching the deployment convention of the survey.
func (c *Config) ApplyEnv() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.DatabaseURL = dsn
	}
	if raw := os.Getenv("ADMIN_IDS"); raw != "" {
		var ids []int64
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			c.AdminIDs = ids
		}
	}
	if dir := os.Getenv("AUDIO_DIR"); dir != "" {
		c.AudioDir = dir
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if path := os.Getenv("SURVEY_FILE"); path != "" {
		c.SurveyFile = path
	}
}

// IsAdmin reports whether the given user ID is configured as an admin.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
