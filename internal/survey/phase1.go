package survey

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/uzspeech/tts-survey-bot/internal/store"
	"github.com/uzspeech/tts-survey-bot/internal/transport"
)

// beginPrompt starts phase 1 for one prompt. Re-running a prompt that
// already has persisted records is rejected with a notice: the store, not
// the session, decides what counts as done.
func (e *Engine) beginPrompt(userID int64, promptID int) {
	promptIdx := -1
	for i, id := range e.survey.PromptNumbers {
		if id == promptID {
			promptIdx = i
			break
		}
	}
	if promptIdx < 0 {
		e.sendText(userID, msgUnknownCommand)
		return
	}

	done, err := e.store.HasCompletedPrompt(userID, promptID)
	if err != nil {
		log.Printf("Warning: failed to check prompt %d for user %d: %v", promptID, userID, err)
		e.sendText(userID, msgPersistenceFailed)
		return
	}
	if done {
		e.sendText(userID, fmt.Sprintf(msgPromptAlreadyDone, promptID))
		return
	}

	sess := newSession(userID, promptIdx)
	e.setSession(sess)
	log.Printf("User %d starting prompt %d (session %s)", userID, promptID, sess.ID)

	e.advance(sess)
}

// advance walks the phase-1 progression: draw a fresh presentation order
// on category entry, dispatch the next clip, step to the next category when
// the order is exhausted, and finish the prompt once every category is
// done. The loop is bounded by the category count.
func (e *Engine) advance(sess *Session) {
	userID := sess.UserID

	for {
		if sess.ModelIdx == 0 && len(sess.Order) == 0 {
			if sess.CategoryIdx >= len(e.survey.Categories) {
				e.finishPrompt(sess)
				return
			}

			category := e.survey.Categories[sess.CategoryIdx]
			promptID := e.survey.PromptNumbers[sess.PromptIdx]

			if err := e.sender.SendText(userID, fmt.Sprintf(msgCategoryHeader, category, promptID)); err != nil {
				log.Printf("Warning: failed to send category header to user %d: %v", userID, err)
				e.abortSession(sess, "")
				return
			}

			order, err := e.drawOrder(category, promptID)
			if err != nil {
				log.Printf("Warning: failed to prepare clips for user %d, %s/%d: %v", userID, category, promptID, err)
				e.abortSession(sess, msgAudioMissing)
				return
			}
			sess.Order = order

			labels := make([]string, 0, len(order))
			for _, clip := range order {
				labels = append(labels, clip.Label)
			}
			log.Printf("User %d: starting category %q, prompt %d, order %v (session %s)",
				userID, category, promptID, labels, sess.ID)
		}

		if sess.ModelIdx < len(sess.Order) {
			clip := sess.Order[sess.ModelIdx]

			if err := e.sender.SendAudio(userID, clip.Path, fmt.Sprintf(msgAudioCaption, clip.Label)); err != nil {
				log.Printf("Warning: failed to send audio to user %d: %v", userID, err)
				e.abortSession(sess, msgDeliveryFailed)
				return
			}

			sess.resetClip()
			sess.State = StateAwaitingRating
			e.askQuestion(sess)
			return
		}

		// Category exhausted: move on and redraw on the next pass.
		sess.CategoryIdx++
		sess.ModelIdx = 0
		sess.Order = nil
	}
}

// drawOrder builds a uniformly random permutation of all models for one
// category, resolving each clip's audio path. A fresh draw on every
// category entry decorrelates rating order from model identity.
func (e *Engine) drawOrder(category string, promptID int) ([]ClipAssignment, error) {
	models := make([]string, len(e.survey.Models))
	copy(models, e.survey.Models)
	rand.Shuffle(len(models), func(i, j int) {
		models[i], models[j] = models[j], models[i]
	})

	order := make([]ClipAssignment, 0, len(models))
	for _, model := range models {
		path, err := e.audio.Resolve(category, model, promptID)
		if err != nil {
			return nil, err
		}
		order = append(order, ClipAssignment{
			Label: e.survey.LabelFor(model),
			Model: model,
			Path:  path,
		})
	}
	return order, nil
}

// askQuestion presents the currently open rating question.
func (e *Engine) askQuestion(sess *Session) {
	q := e.survey.Questions[sess.QuestionIdx]

	options := make([]string, 0, len(e.survey.Scale))
	for _, v := range e.survey.Scale {
		options = append(options, strconv.Itoa(v))
	}

	if _, err := e.sender.PresentChoices(sess.UserID, q.Text, options, transport.ChoiceRating); err != nil {
		log.Printf("Warning: failed to present question to user %d: %v", sess.UserID, err)
		e.abortSession(sess, msgDeliveryFailed)
	}
}

// handleRating records one rating button press.
func (e *Engine) handleRating(ev transport.Event) {
	userID := ev.UserID

	sess := e.session(userID)
	if sess == nil || sess.State != StateAwaitingRating {
		e.sendText(userID, msgUseRatingButtons)
		return
	}

	value := ev.Rating.Value
	expected := e.survey.Questions[sess.QuestionIdx].Key
	if ev.Rating.QuestionKey != expected || !e.survey.ValidRating(value) {
		e.sendText(userID, msgUseRatingButtons)
		return
	}

	// Acknowledge by editing the question message. Failures (including a
	// message that was already edited) are logged, never user-visible.
	if ev.MessageRef != "" {
		if err := e.sender.EditChoiceMessage(userID, ev.MessageRef, strconv.Itoa(value)); err != nil {
			log.Printf("Warning: could not edit message for user %d: %v", userID, err)
		}
	}

	sess.ClipRatings = append(sess.ClipRatings, value)
	log.Printf("User %d: rated %q with %d (session %s)", userID, expected, value, sess.ID)

	if sess.QuestionIdx+1 < len(e.survey.Questions) {
		sess.QuestionIdx++
		e.askQuestion(sess)
		return
	}

	// All four questions answered: record the clip and move on.
	clip := sess.Order[sess.ModelIdx]
	record := store.Phase1Record{
		UserID:            userID,
		EvaluatedAt:       time.Now().UTC(),
		Category:          e.survey.Categories[sess.CategoryIdx],
		PromptID:          e.survey.PromptNumbers[sess.PromptIdx],
		AnonymousLabel:    clip.Label,
		ActualModel:       clip.Model,
		Naturalness:       sess.ClipRatings[0],
		Clarity:           sess.ClipRatings[1],
		EmotionalTone:     sess.ClipRatings[2],
		OverallPreference: sess.ClipRatings[3],
	}
	sess.Completed = append(sess.Completed, record)
	log.Printf("User %d: saved ratings for %s in %s/%d, %d clips so far (session %s)",
		userID, clip.Label, record.Category, record.PromptID, len(sess.Completed), sess.ID)

	sess.ModelIdx++
	sess.State = StateAwaitingAudioDispatch
	e.advance(sess)
}

// finishPrompt persists the accumulated records as one batch and either
// hands the user to phase 2 or back to the prompt list.
func (e *Engine) finishPrompt(sess *Session) {
	userID := sess.UserID
	promptID := e.survey.PromptNumbers[sess.PromptIdx]

	if err := e.store.AppendPhase1(userID, promptID, sess.Completed); err != nil {
		log.Printf("Warning: failed to persist prompt %d for user %d (session %s): %v", promptID, userID, sess.ID, err)
		e.sendText(userID, msgPersistenceFailed)
		e.clearSession(userID)
		return
	}

	log.Printf("User %d finished prompt %d (session %s)", userID, promptID, sess.ID)
	e.sendText(userID, fmt.Sprintf(msgPromptFinished, promptID, promptCommandList(e.survey)))

	for _, id := range e.survey.PromptNumbers {
		done, err := e.store.HasCompletedPrompt(userID, id)
		if err != nil || !done {
			if err != nil {
				log.Printf("Warning: failed to check prompt %d for user %d: %v", id, userID, err)
			}
			e.clearSession(userID)
			return
		}
	}

	e.beginPhase2(userID)
}
