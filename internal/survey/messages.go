package survey

import (
	"fmt"
	"strings"

	"github.com/uzspeech/tts-survey-bot/internal/config"
)

// User-facing message templates. Kept in one place so wording changes do
// not touch transition logic.

const (
	msgAlreadyCompleted = "✅ You have already completed the survey. Thank you!"

	msgPromptAlreadyDone = "✅ You have already completed prompt %d."

	msgPromptFinished = "You have finished prompt %d ✅\n\n" +
		"You can continue with the remaining prompts later using %s."

	msgAudioCaption = "Please listen to audio file '%s'."

	msgCategoryHeader = "---\nYou will now rate audio in the \"%s\" category.\n(Prompt %d)\n---"

	msgAudioMissing = "The audio file could not be found. Please contact support."

	msgDeliveryFailed = "Something went wrong while sending the audio. Please try again later."

	msgPersistenceFailed = "An error occurred while saving your answers. Please try again later."

	msgPhase2Intro = "You have finished phase 1 of the survey!\n\n" +
		"Now, in phase 2, please choose which voice you would prefer to hear " +
		"in real life (for example an audiobook, a call center, or a voice assistant)."

	msgPhase2NotReady = "Phase 2 opens once you have finished every phase 1 prompt."

	msgAskComment = "Thank you! Please write any comments you have (optional). " +
		"Send your comment, or send /skip if you have none."

	msgSurveyComplete = "Thank you for completing the survey! Your answers have been saved. " +
		"You cannot participate again."

	msgUseRatingButtons = "Please use the rating buttons."

	msgUsePreferenceButtons = "Please choose your preferred model using the buttons."

	msgSurveyInProgress = "The survey is in progress. Unexpected input received."

	msgUnknownCommand = "Unknown command. Send /start to see your progress."
)

// welcomeMessage explains the two-phase flow in terms of the configured
// survey definition.
func welcomeMessage(s *config.Survey) string {
	return fmt.Sprintf(
		"Welcome to the TTS model evaluation survey!\n\n"+
			"In this anonymous survey you will help evaluate %d text-to-speech models. "+
			"You will listen to a number of audio files and rate them on several criteria. "+
			"Your feedback is essential for improving TTS technology.\n\n"+
			"The survey has two phases:\n"+
			"\t• Phase 1: you listen to %d audio files per prompt across the %s categories "+
			"and rate each one for naturalness, clarity, emotional tone, and pleasantness.\n"+
			"\t• Phase 2: after rating all files, you choose your overall preferred model "+
			"and may leave an optional comment.\n\n"+
			"All models are presented anonymously as %s. "+
			"Your answers are confidential and used for research purposes only.\n\n"+
			"Let's begin!",
		len(s.Models),
		s.ClipsPerPrompt(),
		quoteJoin(s.Categories),
		strings.Join(s.Labels, ", "),
	)
}

// progressMessage lists per-prompt completion status with the command to
// start each unfinished prompt.
func progressMessage(s *config.Survey, done map[int]bool) string {
	var lines []string
	for _, promptID := range s.PromptNumbers {
		if done[promptID] {
			lines = append(lines, fmt.Sprintf("✅ Prompt %d completed", promptID))
		} else {
			lines = append(lines, fmt.Sprintf("❌ Prompt %d not completed (send /prompt_%d to start)", promptID, promptID))
		}
	}
	return "📊 Your survey progress:\n\n" +
		strings.Join(lines, "\n") +
		"\n\nYou can start each unfinished prompt with the commands above."
}

// promptCommandList renders "/prompt_1 /prompt_2 ..." for completion notices.
func promptCommandList(s *config.Survey) string {
	cmds := make([]string, 0, len(s.PromptNumbers))
	for _, id := range s.PromptNumbers {
		cmds = append(cmds, fmt.Sprintf("/prompt_%d", id))
	}
	return strings.Join(cmds, " ")
}

func quoteJoin(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, `"`+it+`"`)
	}
	return strings.Join(quoted, ", ")
}
