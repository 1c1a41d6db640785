package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Action is one outbound message on the stdio transport.
type Action struct {
	Type    string   `json:"type"`
	UserID  int64    `json:"userId"`
	Text    string   `json:"text,omitempty"`
	Path    string   `json:"path,omitempty"`
	Caption string   `json:"caption,omitempty"`
	Options []string `json:"options,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Ref     string   `json:"ref,omitempty"`
	Chosen  string   `json:"chosen,omitempty"`
}

// Stdio frames the chat transport as JSON lines: one Event per inbound
// line, one Action per outbound line.
type Stdio struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex

	// edited tracks choice messages that were already edited, so a second
	// edit attempt stays silent.
	edited map[string]bool
}

var _ Sender = (*Stdio)(nil)

// NewStdio creates a stdio transport reading events from in and writing
// actions to out.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{in: in, out: out, edited: make(map[string]bool)}
}

// Run reads events line by line and dispatches them to the handler.
// This blocks until the input is closed.
func (t *Stdio) Run(h Handler) error {
	scanner := bufio.NewScanner(t.in)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("Warning: dropping malformed event: %v", err)
			continue
		}
		if ev.UserID == 0 {
			log.Printf("Warning: dropping event without userId")
			continue
		}

		h.HandleEvent(ev)
	}

	return scanner.Err()
}

// SendText delivers a plain text message.
func (t *Stdio) SendText(userID int64, text string) error {
	return t.send(Action{Type: "text", UserID: userID, Text: text})
}

// SendAudio delivers an audio file reference with a caption.
func (t *Stdio) SendAudio(userID int64, path, caption string) error {
	return t.send(Action{Type: "audio", UserID: userID, Path: path, Caption: caption})
}

// PresentChoices shows a single-choice prompt and returns the message ref.
func (t *Stdio) PresentChoices(userID int64, prompt string, options []string, kind string) (string, error) {
	ref := uuid.NewString()
	err := t.send(Action{Type: "choices", UserID: userID, Text: prompt, Options: options, Kind: kind, Ref: ref})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// EditChoiceMessage strips the buttons from a sent choice message and
// appends the chosen value. A repeated edit for the same ref is a no-op.
func (t *Stdio) EditChoiceMessage(userID int64, ref, chosen string) error {
	t.mu.Lock()
	already := t.edited[ref]
	t.edited[ref] = true
	t.mu.Unlock()

	if already {
		log.Printf("Warning: choice message %s already edited", ref)
		return nil
	}
	return t.send(Action{Type: "edit", UserID: userID, Ref: ref, Chosen: chosen})
}

// SendDocument delivers a file reference.
func (t *Stdio) SendDocument(userID int64, path string) error {
	return t.send(Action{Type: "document", UserID: userID, Path: path})
}

// send marshals one action per line. The mutex keeps concurrent user turns
// from interleaving partial lines.
func (t *Stdio) send(a Action) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.out, string(data)); err != nil {
		return fmt.Errorf("failed to write action: %w", err)
	}
	return nil
}
