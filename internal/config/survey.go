/*
Package config survey definition.

The survey definition enumerates what participants evaluate: categories,
prompt numbers, candidate TTS models, the anonymous labels they appear
behind, and the rating questions with their scale. The model↔label mapping
is fixed for the whole survey run; re-randomizing labels between sessions
would break cross-session comparability.
*/
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// UnknownModel is the sentinel returned when an anonymous label cannot be
// resolved. The label set is closed, so resolution should never miss, but
// callers must not see an error for a stray label.
const UnknownModel = "Unknown"

// ratingsPerClip is the number of rating questions per clip, fixed by the
// four rating columns of the result schema.
const ratingsPerClip = 4

var validate = validator.New()

// RatingQuestion is one phase-1 question shown after each clip.
type RatingQuestion struct {
	// Text is the question presented to the participant.
	Text string `yaml:"text" validate:"required"`

	// Key identifies the question in callback payloads and record columns.
	Key string `yaml:"key" validate:"required"`
}

// Survey is the immutable, process-wide survey definition.
type Survey struct {
	// Categories are rated in this order within every prompt.
	Categories []string `yaml:"categories" validate:"required,min=1,dive,required"`

	// PromptNumbers are the batches a participant completes one at a time.
	PromptNumbers []int `yaml:"promptNumbers" validate:"required,min=1"`

	// Models are the actual TTS model names, in label order.
	Models []string `yaml:"models" validate:"required,min=1,dive,required"`

	// Labels are the single-character anonymous stand-ins, one per model.
	Labels []string `yaml:"labels" validate:"required,min=1,dive,required"`

	// Questions are asked in order for every clip.
	Questions []RatingQuestion `yaml:"questions" validate:"required,min=1,dive"`

	// Scale is the allowed rating range, ascending.
	Scale []int `yaml:"scale" validate:"required,min=2"`

	modelToLabel map[string]string
	labelToModel map[string]string
}

// DefaultSurvey returns the survey definition used by the Uzbek TTS
// evaluation deployment.
func DefaultSurvey() *Survey {
	s := &Survey{
		Categories:    []string{"News", "Literature", "Technical"},
		PromptNumbers: []int{1, 2, 3},
		Models:        []string{"NavAI", "Yandex Speech Kit", "UzbekVoice", "Muxlisa", "Aisha"},
		Labels:        []string{"A", "B", "C", "D", "E"},
		Questions: []RatingQuestion{
			{Text: "How natural does the voice sound? (1: robotic → 5: completely human-like)", Key: "naturalness"},
			{Text: "How clear and understandable is the speech? (1: unclear → 5: very clear)", Key: "clarity"},
			{Text: "How well is the emotional tone conveyed? (1: flat/monotone → 5: expressive/engaging)", Key: "emotional_tone"},
			{Text: "How pleasant is the voice to listen to? (1: unpleasant → 5: very pleasant)", Key: "overall_preference_phase1"},
		},
		Scale: []int{1, 2, 3, 4, 5},
	}
	if err := s.finalize(); err != nil {
		// The built-in definition is known-good; a failure here is a bug.
		panic(err)
	}
	return s
}

// LoadSurvey reads a YAML survey definition from path and validates it.
func LoadSurvey(path string) (*Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey definition: %w", err)
	}

	var s Survey
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &InvalidSurveyError{Path: path, Message: err.Error()}
	}

	if err := s.finalize(); err != nil {
		return nil, &InvalidSurveyError{Path: path, Message: err.Error()}
	}
	return &s, nil
}

// finalize validates the definition and builds the label mappings.
func (s *Survey) finalize() error {
	if err := validate.Struct(s); err != nil {
		return err
	}

	if len(s.Models) != len(s.Labels) {
		return fmt.Errorf("models (%d) and labels (%d) must have the same length", len(s.Models), len(s.Labels))
	}

	// The result schema has exactly four rating columns per clip; the
	// question list must match it one-to-one.
	if len(s.Questions) != ratingsPerClip {
		return fmt.Errorf("exactly %d rating questions are required, got %d", ratingsPerClip, len(s.Questions))
	}

	s.modelToLabel = make(map[string]string, len(s.Models))
	s.labelToModel = make(map[string]string, len(s.Labels))
	for i, model := range s.Models {
		label := s.Labels[i]
		if utf8.RuneCountInString(label) != 1 {
			return fmt.Errorf("label %q must be a single character", label)
		}
		if _, dup := s.labelToModel[label]; dup {
			return fmt.Errorf("duplicate label %q", label)
		}
		if _, dup := s.modelToLabel[model]; dup {
			return fmt.Errorf("duplicate model %q", model)
		}
		s.modelToLabel[model] = label
		s.labelToModel[label] = model
	}

	for i := 1; i < len(s.Scale); i++ {
		if s.Scale[i] <= s.Scale[i-1] {
			return fmt.Errorf("scale must be strictly ascending")
		}
	}

	return nil
}

// LabelFor returns the anonymous label for a model name.
func (s *Survey) LabelFor(model string) string {
	return s.modelToLabel[model]
}

// ModelFor resolves an anonymous label to the actual model name.
// Unknown labels resolve to the UnknownModel sentinel, never an error.
func (s *Survey) ModelFor(label string) string {
	if model, ok := s.labelToModel[label]; ok {
		return model
	}
	return UnknownModel
}

// ValidRating reports whether v falls inside the rating scale.
func (s *Survey) ValidRating(v int) bool {
	for _, allowed := range s.Scale {
		if v == allowed {
			return true
		}
	}
	return false
}

// TotalClips is the number of clips a participant rates across all prompts.
func (s *Survey) TotalClips() int {
	return len(s.Categories) * len(s.PromptNumbers) * len(s.Models)
}

// TotalSentences is the number of (category, prompt) sentences in phase 1.
func (s *Survey) TotalSentences() int {
	return len(s.Categories) * len(s.PromptNumbers)
}

// ClipsPerPrompt is the number of records one completed prompt produces.
func (s *Survey) ClipsPerPrompt() int {
	return len(s.Categories) * len(s.Models)
}
