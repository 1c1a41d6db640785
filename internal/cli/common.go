/*
Package cli implements the bot's command line interface.

Commands:
  - serve:  run the survey bot on the stdio transport
  - report: print aggregate results
  - export: copy the CSV result files to a directory
  - resync: reconcile the CSV mirror and the database
*/
package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/uzspeech/tts-survey-bot/internal/config"
	"github.com/uzspeech/tts-survey-bot/internal/store"
)

// loadConfig loads (or creates) the configuration file, layers a .env file
// and environment variables on top, and returns the result.
func loadConfig() (*config.Config, error) {
	// A missing .env file is the normal case.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// loadSurvey returns the configured survey definition, falling back to the
// built-in default when no file is configured.
func loadSurvey(cfg *config.Config) (*config.Survey, error) {
	if cfg.SurveyFile == "" {
		return config.DefaultSurvey(), nil
	}
	s, err := config.LoadSurvey(cfg.SurveyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey definition: %w", err)
	}
	return s, nil
}

// openStore opens the dual progress store per the configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	opts := store.Options{
		DataDir:     cfg.DataDir,
		DatabaseURL: cfg.DatabaseURL,
	}
	if cfg.Settings != nil {
		opts.StartupRetries = cfg.Settings.StartupRetries
		opts.StartupRetryDelay = time.Duration(cfg.Settings.StartupRetryDelaySeconds) * time.Second
	}

	st, err := store.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}
	return st, nil
}
