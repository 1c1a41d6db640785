/*
Package transport defines the chat transport boundary.

The survey engine never talks to a chat SDK directly: inbound turns arrive
as Events and outbound messages leave through the Sender interface. The only
ordering assumption is per-user FIFO. The stdio implementation frames both
directions as JSON lines so the bot can be driven by a harness (or another
process bridging a real chat platform).
*/
package transport

// Event is one inbound user turn: a command, free text, or a structured
// callback from a previously presented choice.
type Event struct {
	// UserID identifies the participant. All turns for one user are
	// processed strictly in order.
	UserID int64 `json:"userId"`

	// Text carries a command (leading slash) or free text.
	Text string `json:"text,omitempty"`

	// Rating is set when the user pressed a rating button.
	Rating *RatingCallback `json:"rating,omitempty"`

	// Preference is set when the user pressed a phase-2 label button.
	Preference *PreferenceCallback `json:"preference,omitempty"`

	// MessageRef identifies the choice message the callback answers,
	// used to edit that message afterwards.
	MessageRef string `json:"messageRef,omitempty"`
}

// RatingCallback is a pressed rating button.
type RatingCallback struct {
	QuestionKey string `json:"questionKey"`
	Value       int    `json:"value"`
}

// PreferenceCallback is a pressed phase-2 preference button.
type PreferenceCallback struct {
	Label string `json:"label"`
}

// Choice kinds for PresentChoices.
const (
	ChoiceRating     = "rating"
	ChoicePreference = "preference"
)

// Sender is the outbound half of the chat transport.
//
// EditChoiceMessage must be idempotent from the caller's point of view:
// editing a message that was already edited logs but never surfaces an
// error to the survey flow.
type Sender interface {
	// SendText delivers a plain text message.
	SendText(userID int64, text string) error

	// SendAudio delivers an audio file with a caption.
	SendAudio(userID int64, path, caption string) error

	// PresentChoices shows a single-choice prompt and returns a reference
	// to the sent message for later editing.
	PresentChoices(userID int64, prompt string, options []string, kind string) (string, error)

	// EditChoiceMessage removes the buttons from a previously sent choice
	// message and appends the chosen value.
	EditChoiceMessage(userID int64, ref, chosen string) error

	// SendDocument delivers a file (admin CSV export).
	SendDocument(userID int64, path string) error
}

// Handler consumes inbound events.
type Handler interface {
	HandleEvent(ev Event)
}
