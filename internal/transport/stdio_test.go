package transport

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// recordingHandler collects events dispatched by Run.
type recordingHandler struct {
	events []Event
}

func (h *recordingHandler) HandleEvent(ev Event) {
	h.events = append(h.events, ev)
}

// TestRunDispatchesEvents verifies JSON lines become events in order.
func TestRunDispatchesEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"userId":1,"text":"/start"}`,
		`{"userId":1,"rating":{"questionKey":"clarity","value":4},"messageRef":"m1"}`,
		`{"userId":2,"preference":{"label":"B"}}`,
	}, "\n")

	h := &recordingHandler{}
	stdio := NewStdio(strings.NewReader(input), &bytes.Buffer{})
	if err := stdio.Run(h); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(h.events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(h.events))
	}
	if h.events[0].Text != "/start" {
		t.Errorf("Event 0 text = %q", h.events[0].Text)
	}
	if h.events[1].Rating == nil || h.events[1].Rating.Value != 4 || h.events[1].MessageRef != "m1" {
		t.Errorf("Event 1 rating not parsed: %+v", h.events[1])
	}
	if h.events[2].Preference == nil || h.events[2].Preference.Label != "B" {
		t.Errorf("Event 2 preference not parsed: %+v", h.events[2])
	}
}

// TestRunSkipsMalformedLines verifies bad input is dropped, not fatal.
func TestRunSkipsMalformedLines(t *testing.T) {
	input := "not json\n{\"userId\":0,\"text\":\"x\"}\n{\"userId\":3,\"text\":\"ok\"}\n"

	h := &recordingHandler{}
	stdio := NewStdio(strings.NewReader(input), &bytes.Buffer{})
	if err := stdio.Run(h); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(h.events) != 1 || h.events[0].UserID != 3 {
		t.Errorf("Expected only the valid event, got %+v", h.events)
	}
}

// TestSendersEmitActions verifies the outbound framing.
func TestSendersEmitActions(t *testing.T) {
	var out bytes.Buffer
	stdio := NewStdio(strings.NewReader(""), &out)

	if err := stdio.SendText(5, "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if err := stdio.SendAudio(5, "/a/b.wav", "listen to 'A'"); err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}
	ref, err := stdio.PresentChoices(5, "rate it", []string{"1", "2"}, ChoiceRating)
	if err != nil {
		t.Fatalf("PresentChoices failed: %v", err)
	}
	if ref == "" {
		t.Fatal("PresentChoices returned empty ref")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 actions, got %d", len(lines))
	}

	var a Action
	if err := json.Unmarshal([]byte(lines[2]), &a); err != nil {
		t.Fatalf("Failed to parse action: %v", err)
	}
	if a.Type != "choices" || a.Kind != ChoiceRating || a.Ref != ref {
		t.Errorf("Choices action wrong: %+v", a)
	}
}

// TestEditChoiceMessageIdempotent verifies a second edit is silent.
func TestEditChoiceMessageIdempotent(t *testing.T) {
	var out bytes.Buffer
	stdio := NewStdio(strings.NewReader(""), &out)

	ref, _ := stdio.PresentChoices(5, "rate it", []string{"1"}, ChoiceRating)

	if err := stdio.EditChoiceMessage(5, ref, "1"); err != nil {
		t.Fatalf("First edit failed: %v", err)
	}
	before := out.Len()

	if err := stdio.EditChoiceMessage(5, ref, "1"); err != nil {
		t.Fatalf("Second edit should be silent, got: %v", err)
	}
	if out.Len() != before {
		t.Error("Second edit emitted an action")
	}
}
