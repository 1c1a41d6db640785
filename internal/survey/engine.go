package survey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/uzspeech/tts-survey-bot/internal/audio"
	"github.com/uzspeech/tts-survey-bot/internal/config"
	"github.com/uzspeech/tts-survey-bot/internal/store"
	"github.com/uzspeech/tts-survey-bot/internal/transport"
)

// Engine drives every participant through the survey. All transitions for
// one user are strictly sequential; turns for different users may run
// concurrently, with the progress store providing its own synchronization.
type Engine struct {
	survey *config.Survey
	cfg    *config.Config
	store  store.Store
	audio  *audio.Locator
	sender transport.Sender

	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

// New creates a survey engine.
func New(s *config.Survey, cfg *config.Config, st store.Store, loc *audio.Locator, sender transport.Sender) *Engine {
	return &Engine{
		survey:   s,
		cfg:      cfg,
		store:    st,
		audio:    loc,
		sender:   sender,
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// HandleEvent processes one inbound turn. Turns for the same user are
// serialized here; the session is exclusively owned for the duration.
func (e *Engine) HandleEvent(ev transport.Event) {
	lock := e.userLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	switch {
	case ev.Rating != nil:
		e.handleRating(ev)
	case ev.Preference != nil:
		e.handlePreference(ev)
	default:
		e.handleText(ev)
	}
}

// userLock returns the per-user serialization lock, creating it on first use.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

// session returns the user's active session, or nil.
func (e *Engine) session(userID int64) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[userID]
}

// setSession installs a fresh session for the user.
func (e *Engine) setSession(sess *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[sess.UserID] = sess
}

// clearSession drops the user's session, if any.
func (e *Engine) clearSession(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, userID)
}

// handleText routes commands and free text.
func (e *Engine) handleText(ev transport.Event) {
	text := strings.TrimSpace(ev.Text)

	if strings.HasPrefix(text, "/") {
		// While a comment is awaited, slash text other than /skip is the
		// comment itself, recorded verbatim.
		if sess := e.session(ev.UserID); sess != nil && sess.State == StateAwaitingComment && text != "/skip" {
			e.finishSurvey(sess, text)
			return
		}
		e.handleCommand(ev.UserID, text)
		return
	}

	sess := e.session(ev.UserID)
	if sess == nil {
		e.sendText(ev.UserID, msgUnknownCommand)
		return
	}

	switch sess.State {
	case StateAwaitingComment:
		e.finishSurvey(sess, text)
	case StateAwaitingRating:
		e.sendText(ev.UserID, msgUseRatingButtons)
	case StateAwaitingPreference:
		e.sendText(ev.UserID, msgUsePreferenceButtons)
	default:
		e.sendText(ev.UserID, msgSurveyInProgress)
	}
}

// handleCommand dispatches a slash command.
func (e *Engine) handleCommand(userID int64, text string) {
	fields := strings.Fields(text)
	cmd := fields[0]

	switch {
	case cmd == "/start":
		e.start(userID)
	case cmd == "/phase_2":
		e.beginPhase2(userID)
	case cmd == "/skip":
		sess := e.session(userID)
		if sess != nil && sess.State == StateAwaitingComment {
			e.finishSurvey(sess, "")
			return
		}
		e.sendText(userID, msgUnknownCommand)
	case strings.HasPrefix(cmd, "/prompt_"):
		id, err := strconv.Atoi(strings.TrimPrefix(cmd, "/prompt_"))
		if err != nil {
			e.sendText(userID, msgUnknownCommand)
			return
		}
		e.beginPrompt(userID, id)
	case strings.HasPrefix(cmd, "/admin_"):
		e.handleAdminCommand(userID, cmd, fields[1:])
	default:
		e.sendText(userID, msgUnknownCommand)
	}
}

// start reports completion status, or per-prompt progress for users who
// still have work to do. Completion is derived entirely from the store, so
// an abandoned mid-prompt session costs nothing: the next start recomputes
// exactly which prompts remain.
func (e *Engine) start(userID int64) {
	log.Printf("User %d started the bot", userID)

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
	for _, promptID := range e.survey.PromptNumbers {
		ok, err := e.store.HasCompletedPrompt(userID, promptID)
		if err != nil {
			log.Printf("Warning: failed to check prompt %d for user %d: %v", promptID, userID, err)
			e.sendText(userID, msgPersistenceFailed)
			return
		}
		done[promptID] = ok
	}

	e.sendText(userID, welcomeMessage(e.survey)+"\n\n"+progressMessage(e.survey, done))
	e.clearSession(userID)
}

// sendText delivers a message, logging delivery failures. Used where a
// failed notice must not abort the flow on its own.
func (e *Engine) sendText(userID int64, text string) {
	if err := e.sender.SendText(userID, text); err != nil {
		log.Printf("Warning: failed to send message to user %d: %v", userID, err)
	}
}

// abortSession clears the session after a delivery or resource failure,
// leaving nothing half-recorded. The notice is best-effort.
func (e *Engine) abortSession(sess *Session, notice string) {
	log.Printf("User %d: aborting session %s in state %s", sess.UserID, sess.ID, sess.State)
	if notice != "" {
		e.sendText(sess.UserID, notice)
	}
	e.clearSession(sess.UserID)
}
