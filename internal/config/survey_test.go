package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultSurvey verifies the built-in definition is complete and consistent.
func TestDefaultSurvey(t *testing.T) {
	s := DefaultSurvey()

	if len(s.Categories) != 3 {
		t.Errorf("Expected 3 categories, got %d", len(s.Categories))
	}
	if len(s.Models) != 5 || len(s.Labels) != 5 {
		t.Errorf("Expected 5 models and 5 labels, got %d/%d", len(s.Models), len(s.Labels))
	}
	if len(s.Questions) != 4 {
		t.Errorf("Expected 4 rating questions, got %d", len(s.Questions))
	}
	if s.TotalClips() != 45 {
		t.Errorf("Expected 45 total clips, got %d", s.TotalClips())
	}
	if s.ClipsPerPrompt() != 15 {
		t.Errorf("Expected 15 clips per prompt, got %d", s.ClipsPerPrompt())
	}
}

// TestLabelMappingBijection verifies label<->model resolution is the identity
// when composed, for every configured model and label.
func TestLabelMappingBijection(t *testing.T) {
	s := DefaultSurvey()

	for _, model := range s.Models {
		label := s.LabelFor(model)
		if label == "" {
			t.Fatalf("No label for model %q", model)
		}
		if got := s.ModelFor(label); got != model {
			t.Errorf("ModelFor(LabelFor(%q)) = %q", model, got)
		}
	}
	for _, label := range s.Labels {
		model := s.ModelFor(label)
		if model == UnknownModel {
			t.Fatalf("No model for label %q", label)
		}
		if got := s.LabelFor(model); got != label {
			t.Errorf("LabelFor(ModelFor(%q)) = %q", label, got)
		}
	}
}

// TestModelForUnknownLabel verifies stray labels resolve to the sentinel.
func TestModelForUnknownLabel(t *testing.T) {
	s := DefaultSurvey()
	if got := s.ModelFor("Z"); got != UnknownModel {
		t.Errorf("Expected %q for unknown label, got %q", UnknownModel, got)
	}
}

// TestValidRating verifies scale membership checks.
func TestValidRating(t *testing.T) {
	s := DefaultSurvey()
	for v := 1; v <= 5; v++ {
		if !s.ValidRating(v) {
			t.Errorf("Expected %d to be a valid rating", v)
		}
	}
	for _, v := range []int{0, 6, -1} {
		if s.ValidRating(v) {
			t.Errorf("Expected %d to be rejected", v)
		}
	}
}

// TestLoadSurvey verifies loading a YAML definition from disk.
func TestLoadSurvey(t *testing.T) {
	doc := `
categories: [News, Lit]
promptNumbers: [1]
models: [ModelOne, ModelTwo]
labels: [A, B]
questions:
  - text: "Q1?"
    key: q1
  - text: "Q2?"
    key: q2
  - text: "Q3?"
    key: q3
  - text: "Q4?"
    key: q4
scale: [1, 2, 3, 4, 5]
`
	path := filepath.Join(t.TempDir(), "survey.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSurvey(path)
	if err != nil {
		t.Fatalf("LoadSurvey failed: %v", err)
	}
	if s.LabelFor("ModelTwo") != "B" {
		t.Errorf("Expected label B for ModelTwo, got %q", s.LabelFor("ModelTwo"))
	}
	if s.ClipsPerPrompt() != 4 {
		t.Errorf("Expected 4 clips per prompt, got %d", s.ClipsPerPrompt())
	}
}

// TestLoadSurveyRejectsBadDefinitions verifies validation failures.
func TestLoadSurveyRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"label count mismatch",
			"categories: [News]\npromptNumbers: [1]\nmodels: [M1, M2]\nlabels: [A]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}, {text: Q3, key: q3}, {text: Q4, key: q4}]\nscale: [1,2,3,4,5]\n",
		},
		{
			"duplicate labels",
			"categories: [News]\npromptNumbers: [1]\nmodels: [M1, M2]\nlabels: [A, A]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}, {text: Q3, key: q3}, {text: Q4, key: q4}]\nscale: [1,2,3,4,5]\n",
		},
		{
			"multi-character label",
			"categories: [News]\npromptNumbers: [1]\nmodels: [M1]\nlabels: [AB]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}, {text: Q3, key: q3}, {text: Q4, key: q4}]\nscale: [1,2,3,4,5]\n",
		},
		{
			"empty categories",
			"categories: []\npromptNumbers: [1]\nmodels: [M1]\nlabels: [A]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}, {text: Q3, key: q3}, {text: Q4, key: q4}]\nscale: [1,2,3,4,5]\n",
		},
		{
			"wrong question count",
			"categories: [News]\npromptNumbers: [1]\nmodels: [M1]\nlabels: [A]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}]\nscale: [1,2,3,4,5]\n",
		},
		{
			"non-ascending scale",
			"categories: [News]\npromptNumbers: [1]\nmodels: [M1]\nlabels: [A]\nquestions: [{text: Q1, key: q1}, {text: Q2, key: q2}, {text: Q3, key: q3}, {text: Q4, key: q4}]\nscale: [1,1,2]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "survey.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadSurvey(path); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
