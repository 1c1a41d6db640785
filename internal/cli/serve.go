package cli

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uzspeech/tts-survey-bot/internal/audio"
	"github.com/uzspeech/tts-survey-bot/internal/survey"
	"github.com/uzspeech/tts-survey-bot/internal/transport"
)

// NewServeCmd creates the 'serve' command for running the survey bot.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the survey bot (stdio transport)",
		Long: `Start the survey bot on the stdio transport.

Inbound user turns are read from stdin as JSON lines; outbound messages
(text, audio dispatches, choice prompts) are written to stdout the same
way. A bridge process translates between this framing and a chat platform.

At startup the CSV result files are rebuilt from the database, which is
the authority across restarts.`,
		Example: `  # Run directly, driven by a bridge on stdin/stdout
  tts-survey-bot serve

  # Point at a Postgres backend
  DATABASE_URL=postgres://bot@db/survey tts-survey-bot serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	return cmd
}

// runServe wires the engine onto the stdio transport and blocks until
// stdin closes or a shutdown signal arrives.
func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	def, err := loadSurvey(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Database is the authority: rebuild the CSV mirror before serving.
	if err := st.ResyncFromDatabase(); err != nil {
		log.Printf("Warning: failed to resync CSV files from database: %v", err)
	}

	stdio := transport.NewStdio(os.Stdin, os.Stdout)
	engine := survey.New(def, cfg, st, audio.NewLocator(cfg.AudioDir), stdio)

	log.Printf("Survey bot starting: %d categories, %d prompts, %d models, audio root %s",
		len(def.Categories), len(def.PromptNumbers), len(def.Models), cfg.AudioDir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdio.Run(engine)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down", sig)
		return nil
	case err := <-errChan:
		// stdin closed or a read error; either way the bot is done.
		if err != nil {
			log.Printf("Transport stopped with error: %v", err)
		}
		return err
	}
}
