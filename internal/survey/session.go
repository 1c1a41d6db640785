/*
Package survey implements the survey state machine.

One participant moves through: clip presentation → four sequential rating
questions → next clip → next category → prompt completion → (once every
prompt has records) final preference selection → optional comment → done.
Sessions are held in memory only; whether a prompt or the whole survey is
complete is always derived from the progress store, which is what makes the
survey resumable across process restarts.
*/
package survey

import (
	"github.com/google/uuid"

	"github.com/uzspeech/tts-survey-bot/internal/store"
)

// State is the session's position in the survey flow.
type State int

const (
	// StateIdle: no prompt in progress.
	StateIdle State = iota

	// StateAwaitingAudioDispatch: the next clip (or prompt completion)
	// is about to be emitted.
	StateAwaitingAudioDispatch

	// StateAwaitingRating: a clip was sent and question QuestionIdx is open.
	StateAwaitingRating

	// StateAwaitingPreference: phase 2, waiting for a label choice.
	StateAwaitingPreference

	// StateAwaitingComment: phase 2, waiting for free text or /skip.
	StateAwaitingComment

	// StateDone: survey finished; terminal.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingAudioDispatch:
		return "awaiting_audio_dispatch"
	case StateAwaitingRating:
		return "awaiting_rating"
	case StateAwaitingPreference:
		return "awaiting_preference"
	case StateAwaitingComment:
		return "awaiting_comment"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// ClipAssignment is one entry in a category's randomized presentation
// order: the anonymous label shown to the user, the actual model behind
// it, and the resolved audio path.
type ClipAssignment struct {
	Label string
	Model string
	Path  string
}

// Session is a participant's in-flight survey state. At most one Session
// per user is active at a time, and it is exclusively owned by the handler
// processing that user's current turn, so no internal locking is needed.
//
// Field validity follows the state tag: Order/ModelIdx/ClipRatings only
// mean something during phase 1, PreferredLabel/PreferredModel only after
// a phase-2 choice.
type Session struct {
	// ID correlates log lines for one session.
	ID     string
	UserID int64
	State  State

	// Phase 1 position.
	CategoryIdx int
	PromptIdx   int // index into the survey's prompt number list
	ModelIdx    int

	// Order is the randomized clip order for the current category,
	// re-drawn every time a category is (re)entered.
	Order []ClipAssignment

	// QuestionIdx is the zero-based rating question currently open.
	QuestionIdx int

	// ClipRatings accumulates answers for the clip being judged.
	ClipRatings []int

	// Completed accumulates finished clip records for the prompt in
	// progress; persisted in one batch when the prompt ends.
	Completed []store.Phase1Record

	// Phase 2 selection.
	PreferredLabel string
	PreferredModel string
}

// newSession returns a fresh phase-1 session positioned at the first
// category of the given prompt.
func newSession(userID int64, promptIdx int) *Session {
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     StateAwaitingAudioDispatch,
		PromptIdx: promptIdx,
	}
}

// newPhase2Session returns a fresh session waiting for the final
// preference choice.
func newPhase2Session(userID int64) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		State:  StateAwaitingPreference,
	}
}

// resetClip clears the per-clip rating accumulator.
func (s *Session) resetClip() {
	s.QuestionIdx = 0
	s.ClipRatings = s.ClipRatings[:0]
}
