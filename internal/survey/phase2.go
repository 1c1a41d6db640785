package survey

import (
	"log"
	"time"

	"github.com/uzspeech/tts-survey-bot/internal/store"
	"github.com/uzspeech/tts-survey-bot/internal/transport"
)

// beginPhase2 opens the final preference stage. Rejected when a phase-2
// record already exists for the user, or when any prompt still has no
// persisted phase-1 records: a completion without ratings would lock the
// user out with nothing to report on.
func (e *Engine) beginPhase2(userID int64) {
	completed, err := e.store.HasCompletedSurvey(userID)
	if err != nil {
		log.Printf("Warning: failed to check survey completion for user %d: %v", userID, err)
		e.sendText(userID, msgPersistenceFailed)
		return
	}
	if completed {
		e.sendText(userID, msgAlreadyCompleted)
		e.clearSession(userID)
		return
	}

	done := make(map[int]bool, len(e.survey.PromptNumbers))
	allDone := true
	for _, promptID := range e.survey.PromptNumbers {
		ok, err := e.store.HasCompletedPrompt(userID, promptID)
		if err != nil {
			log.Printf("Warning: failed to check prompt %d for user %d: %v", promptID, userID, err)
			e.sendText(userID, msgPersistenceFailed)
			return
		}
		done[promptID] = ok
		if !ok {
			allDone = false
		}
	}
	if !allDone {
		log.Printf("User %d tried to start phase 2 with unfinished prompts", userID)
		e.sendText(userID, msgPhase2NotReady+"\n\n"+progressMessage(e.survey, done))
		return
	}

	sess := newPhase2Session(userID)
	e.setSession(sess)
	log.Printf("User %d starting phase 2 (session %s)", userID, sess.ID)

	if _, err := e.sender.PresentChoices(userID, msgPhase2Intro, e.survey.Labels, transport.ChoicePreference); err != nil {
		log.Printf("Warning: failed to present preference choices to user %d: %v", userID, err)
		e.abortSession(sess, msgDeliveryFailed)
	}
}

// handlePreference records the chosen label and asks for a comment.
func (e *Engine) handlePreference(ev transport.Event) {
	userID := ev.UserID

	sess := e.session(userID)
	if sess == nil || sess.State != StateAwaitingPreference {
		e.sendText(userID, msgUsePreferenceButtons)
		return
	}

	label := ev.Preference.Label
	// The label set is closed; a stray label resolves to the sentinel
	// rather than erroring.
	model := e.survey.ModelFor(label)

	if ev.MessageRef != "" {
		if err := e.sender.EditChoiceMessage(userID, ev.MessageRef, label); err != nil {
			log.Printf("Warning: could not edit message for user %d: %v", userID, err)
		}
	}

	sess.PreferredLabel = label
	sess.PreferredModel = model
	sess.State = StateAwaitingComment
	log.Printf("User %d: selected final preference %s (%s) (session %s)", userID, label, model, sess.ID)

	e.sendText(userID, msgAskComment)
}

// finishSurvey persists the phase-2 record (comment may be empty after
// /skip), mirrors the CSVs into the database, and terminates the session.
func (e *Engine) finishSurvey(sess *Session, comment string) {
	userID := sess.UserID
	log.Printf("User %d: final comment received (%d chars) (session %s)", userID, len(comment), sess.ID)

	record := store.Phase2Record{
		PreferredLabel: sess.PreferredLabel,
		PreferredModel: sess.PreferredModel,
		Comment:        comment,
		CompletedAt:    time.Now().UTC(),
	}

	if err := e.store.AppendPhase2(userID, record); err != nil {
		log.Printf("Warning: failed to persist phase2 record for user %d (session %s): %v", userID, sess.ID, err)
		e.sendText(userID, msgPersistenceFailed)
		e.clearSession(userID)
		return
	}

	// Phase-2 finalization is the point where strict consistency between
	// the CSV mirror and the database is guaranteed before reporting.
	if err := e.store.MirrorToDatabase(); err != nil {
		log.Printf("Warning: failed to mirror CSV to database after user %d completed: %v", userID, err)
	}

	sess.State = StateDone
	e.sendText(userID, msgSurveyComplete)
	log.Printf("User %d successfully completed the survey (session %s)", userID, sess.ID)
	e.clearSession(userID)
}
